// Command analyze prints statistics about generated Light 'Em All boards.
//
// It analyzes a single preset (--config), an ad-hoc board (--width/--height),
// or every preset in --config-dir when neither is given.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/lightem/game/engine"
)

// Analysis holds the statistics of one generated board
type Analysis struct {
	Name           string
	Width          int
	Height         int
	Seed           int64
	Shapes         map[engine.Shape]int
	InitialPowered int
	TotalTiles     int
	MaxDepth       int
	AverageDepth   float64
	Farthest       engine.Position
	Board          []string
	Solution       []string
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "print statistics about generated boards",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "board configuration file to analyze"},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory of presets analyzed when no board is given"},
			&cli.IntFlag{Name: "width", Usage: "width of an ad-hoc board"},
			&cli.IntFlag{Name: "height", Usage: "height of an ad-hoc board"},
			&cli.Int64Flag{Name: "seed", Usage: "generation seed (overrides the preset seed)"},
			&cli.BoolFlag{Name: "solution", Usage: "also render the unscrambled board"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Writer
	if out == nil {
		out = os.Stdout
	}

	var configs []*engine.BoardConfig
	switch {
	case cmd.IsSet("width") || cmd.IsSet("height"):
		configs = append(configs, engine.NewBoardConfig(cmd.Int("width"), cmd.Int("height")))
	case cmd.String("config") != "":
		config, err := engine.LoadBoardConfig(cmd.String("config"))
		if err != nil {
			return err
		}
		configs = append(configs, config)
	default:
		files, err := filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no configurations found in %s", cmd.String("config-dir"))
		}
		for _, file := range files {
			config, err := engine.LoadBoardConfig(file)
			if err != nil {
				fmt.Fprintf(out, "Skipping %s: %v\n\n", file, err)
				continue
			}
			configs = append(configs, config)
		}
	}

	for _, config := range configs {
		if cmd.IsSet("seed") {
			seed := cmd.Int64("seed")
			config.Seed = &seed
		}
		analysis, err := analyzeConfig(config)
		if err != nil {
			return err
		}
		printAnalysis(out, analysis, cmd.Bool("solution"))
	}
	return nil
}

// analyzeConfig generates the board twice with the same seed: once as
// configured and once unscrambled, which is the board's solution.
func analyzeConfig(config *engine.BoardConfig) (*Analysis, error) {
	if config.Seed == nil {
		seed := time.Now().UnixNano()
		config.Seed = &seed
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	solvedConfig := *config
	solvedConfig.Scramble = false
	solved, err := engine.NewEngine(&solvedConfig)
	if err != nil {
		return nil, err
	}

	state := eng.GetState()
	analysis := &Analysis{
		Name:           config.Name,
		Width:          config.Width,
		Height:         config.Height,
		Seed:           *config.Seed,
		Shapes:         engine.CountShapes(state.Grid),
		InitialPowered: state.PoweredCount,
		TotalTiles:     state.TotalTiles,
		Board:          engine.RenderBoard(state.Grid, state.Source),
	}

	solvedState := solved.GetState()
	analysis.Solution = engine.RenderBoard(solvedState.Grid, solvedState.Source)

	total := 0
	for pos, depth := range engine.WireDistances(solvedState.Grid, solvedState.Source) {
		total += depth
		if depth > analysis.MaxDepth || (depth == analysis.MaxDepth && before(pos, analysis.Farthest)) {
			analysis.MaxDepth = depth
			analysis.Farthest = pos
		}
	}
	if analysis.TotalTiles > 0 {
		analysis.AverageDepth = float64(total) / float64(analysis.TotalTiles)
	}

	return analysis, nil
}

// before orders positions row-major so ties pick the same tile every run
func before(a, b engine.Position) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

func printAnalysis(w io.Writer, a *Analysis, withSolution bool) {
	fmt.Fprintf(w, "=== %s ===\n", a.Name)
	fmt.Fprintf(w, "Board: %dx%d (%d tiles), seed %d\n", a.Width, a.Height, a.TotalTiles, a.Seed)
	fmt.Fprintf(w, "Initially powered: %d/%d\n", a.InitialPowered, a.TotalTiles)
	fmt.Fprintf(w, "Wire depth from source: max %d at %s, average %.2f\n", a.MaxDepth, a.Farthest, a.AverageDepth)

	shapes := make([]string, 0, len(a.Shapes))
	for shape := range a.Shapes {
		shapes = append(shapes, string(shape))
	}
	sort.Strings(shapes)
	fmt.Fprintln(w, "Shapes:")
	for _, shape := range shapes {
		fmt.Fprintf(w, "  %-9s %d\n", shape, a.Shapes[engine.Shape(shape)])
	}

	fmt.Fprintln(w, "Board:")
	for _, line := range a.Board {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if withSolution {
		fmt.Fprintln(w, "Solution:")
		for _, line := range a.Solution {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	fmt.Fprintln(w)
}
