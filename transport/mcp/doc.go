// Package mcp exposes Light 'Em All to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call is translated into a REST request
// against a running api.Server, and the JSON response is rendered as text with
// the ASCII board drawn by engine.RenderBoard.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board rendering, powered count, solved flag
//   - rotate_tile: quarter turn clockwise at (row, col)
//   - move_source: move the power station along a wire
//   - bulk_actions: several rotations and moves in one call
//   - reset_game, action_history
//   - list_configs, describe_tile, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
