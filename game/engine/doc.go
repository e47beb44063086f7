// Package engine provides the core game logic for Light 'Em All.
//
// The engine package implements the puzzle mechanics including:
//   - Board generation from a random spanning tree (Kruskal over a weighted grid)
//   - Union-find bookkeeping used while the tree is built
//   - Tile rotation and wire adjacency checks
//   - Power flow from the movable power station and the solved check
//   - Board configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for board operations,
// implemented by GameEngine. Grid owns the tiles, GameState is the snapshot
// read by renderers and adapters, and BoardConfig describes how a board is
// generated.
//
// Usage:
//
//	config, err := engine.LoadBoardConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Rotate a tile and move the power station
//	err = gameEngine.RotateTile(0, 1)
//	moved := gameEngine.MoveSource(engine.East)
//	solved := gameEngine.IsSolved()
//
// Game Rules:
//
// Every tile carries wire stubs on some of its four sides. Two neighboring
// tiles share a wire when both facing stubs are open. Power flows from the
// power station along wires; clicking a tile rotates it a quarter turn
// clockwise, and the station itself may travel along any wire. The board is
// solved once every tile is powered.
package engine
