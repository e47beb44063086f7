package engine

// UnionFind tracks which tiles already belong to the same component while the
// spanning tree is built. It keeps no rank and does no path compression, so a
// Find walks the whole representative chain.
type UnionFind struct {
	parent map[Position]Position
}

// NewUnionFind creates an empty UnionFind where every position is its own component
func NewUnionFind() *UnionFind {
	return &UnionFind{parent: make(map[Position]Position)}
}

// Find returns the representative of id's component. Unseen positions represent themselves.
func (uf *UnionFind) Find(id Position) Position {
	for {
		next, ok := uf.parent[id]
		if !ok || next == id {
			return id
		}
		id = next
	}
}

// Union merges the components of a and b by pointing b's representative at a's
func (uf *UnionFind) Union(a, b Position) {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return
	}
	uf.parent[rb] = ra
}

// Connected reports whether a and b share a representative
func (uf *UnionFind) Connected(a, b Position) bool {
	return uf.Find(a) == uf.Find(b)
}
