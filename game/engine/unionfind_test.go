package engine

import "testing"

func TestUnionFind_FindDefaultsToSelf(t *testing.T) {
	uf := NewUnionFind()
	p := Position{Row: 2, Col: 3}

	if uf.Find(p) != p {
		t.Errorf("Expected unseen position to represent itself, got %s", uf.Find(p))
	}
}

func TestUnionFind_Union(t *testing.T) {
	uf := NewUnionFind()
	a, b, c, d := Position{0, 0}, Position{0, 1}, Position{1, 0}, Position{1, 1}

	uf.Union(a, b)
	if uf.Find(b) != a {
		t.Errorf("Expected b's representative to point at a, got %s", uf.Find(b))
	}
	if !uf.Connected(a, b) {
		t.Error("Expected a and b to be connected")
	}
	if uf.Connected(a, c) {
		t.Error("Expected a and c to be disjoint")
	}

	uf.Union(c, d)
	uf.Union(d, b)
	for _, p := range []Position{a, b, c, d} {
		if uf.Find(p) != c {
			t.Errorf("Expected %s to resolve to c after merging, got %s", p, uf.Find(p))
		}
	}
}

func TestUnionFind_UnionSameComponent(t *testing.T) {
	uf := NewUnionFind()
	a, b := Position{0, 0}, Position{0, 1}

	uf.Union(a, b)
	uf.Union(b, a)
	if uf.Find(a) != a || uf.Find(b) != a {
		t.Errorf("Expected re-union to leave a as representative, got %s and %s", uf.Find(a), uf.Find(b))
	}
}

func TestUnionFind_LongChain(t *testing.T) {
	uf := NewUnionFind()
	root := Position{0, 0}

	for col := 1; col < 200; col++ {
		uf.Union(Position{0, col}, Position{0, col - 1})
	}
	if uf.Find(root) != (Position{0, 199}) {
		t.Errorf("Expected chain to resolve to (0,199), got %s", uf.Find(root))
	}
}
