// Command validate checks the board preset JSON files in a configs directory
// (../configs by default, or the first argument). For each file it checks:
//   - JSON structure, with unknown keys rejected
//   - Board size, power station placement, and message format strings
//   - The generated spanning tree: width*height-1 edges, each joining
//     grid neighbors, together reaching every tile
//   - The unscrambled board starts solved, so every preset is winnable
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/lightem/game/engine"
)

// fallbackSeed is used to generate a board for presets without a fixed seed
const fallbackSeed = 1

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.BoardConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateBoardConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	if config.Width*config.Height == 1 {
		result.note("Single-tile board is solved from the start")
	}

	seed := int64(fallbackSeed)
	if config.Seed != nil {
		seed = *config.Seed
	}

	generated := config
	generated.Seed = &seed
	eng, err := engine.NewEngine(&generated)
	if err != nil {
		result.fail("Board generation failed: %v", err)
		return result
	}

	tree := validateTree(config.Width, config.Height, eng.SpanningTree())
	result.Errors = append(result.Errors, tree.Errors...)
	result.Info = append(result.Info, tree.Info...)
	if !tree.Valid {
		result.Valid = false
		return result
	}

	solved := config
	solved.Seed = &seed
	solved.Scramble = false
	solvedEngine, err := engine.NewEngine(&solved)
	if err != nil {
		result.fail("Board generation failed: %v", err)
		return result
	}
	if !solvedEngine.IsSolved() {
		result.fail("Unscrambled board with seed %d is not solved: %d/%d powered",
			seed, solvedEngine.GetState().PoweredCount, config.Width*config.Height)
		return result
	}

	counts := engine.CountShapes(eng.GetState().Grid)
	result.note("✓ Name: %s", config.Name)
	result.note("✓ Board: %dx%d, source (%d,%d)", config.Width, config.Height, config.SourceRow, config.SourceCol)
	if config.Seed != nil {
		result.note("✓ Seed: %d", seed)
	} else {
		result.note("✓ Seed: random (checked with %d)", seed)
	}
	result.note("✓ Shapes: %d dead ends, %d straights, %d corners, %d tees, %d crosses",
		counts[engine.ShapeDeadEnd], counts[engine.ShapeStraight], counts[engine.ShapeCorner],
		counts[engine.ShapeTee], counts[engine.ShapeCross])
	if config.Scramble {
		result.note("✓ Initially powered: %d/%d", eng.GetState().PoweredCount, config.Width*config.Height)
	}

	return result
}

// validateTree checks that edges form a spanning tree of the width x height
// grid. It does not rely on the generator's own union-find.
func validateTree(width, height int, edges []engine.Edge) ValidationResult {
	result := ValidationResult{Valid: true}

	tiles := width * height
	if len(edges) != tiles-1 {
		result.fail("Spanning tree has %d edges, expected %d", len(edges), tiles-1)
	}

	inBounds := func(p engine.Position) bool {
		return p.Row >= 0 && p.Row < height && p.Col >= 0 && p.Col < width
	}

	adjacent := make(map[engine.Position][]engine.Position, tiles)
	for _, e := range edges {
		if !inBounds(e.From) || !inBounds(e.To) {
			result.fail("Edge %s-%s leaves the board", e.From, e.To)
			continue
		}
		if engine.ManhattanDistance(e.From, e.To) != 1 {
			result.fail("Edge %s-%s does not join neighbors", e.From, e.To)
			continue
		}
		adjacent[e.From] = append(adjacent[e.From], e.To)
		adjacent[e.To] = append(adjacent[e.To], e.From)
	}
	if !result.Valid {
		return result
	}

	start := engine.Position{Row: 0, Col: 0}
	seen := mapset.New[engine.Position]()
	seen.Put(start)
	queue := []engine.Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[current] {
			if seen.Has(next) {
				continue
			}
			seen.Put(next)
			queue = append(queue, next)
		}
	}

	if seen.Size() != tiles {
		result.fail("Spanning tree reaches %d/%d tiles", seen.Size(), tiles)
		return result
	}

	result.note("✓ Spanning tree: %d edges reach all %d tiles", len(edges), tiles)
	return result
}

// main scans the configs directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
