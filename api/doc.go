// Package api provides HTTP REST API handlers for Light 'Em All.
//
// The api package implements:
//   - Session management endpoints
//   - Tile rotation, power station moves, and bulk action execution
//   - Board configuration listing, loading, and saving
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session, optionally overriding board size, source, seed, scramble
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Several sessions at once (?sessionIds=a,b or ?configName=easy)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board state with ASCII rendering
//   - GET /api/sessions/{id}/tiles/{row}/{col} - One tile with shape and active wires
//   - POST /api/sessions/{id}/rotate - {"row": 1, "col": 2, "reset": false}
//   - POST /api/sessions/{id}/move - {"direction": "east"}
//   - POST /api/sessions/{id}/bulk - {"actions": [{"type": "rotate", "row": 0, "col": 1}, {"type": "move", "direction": "south"}]}
//   - POST /api/sessions/{id}/reset - Restore the generated board
//   - GET /api/sessions/{id}/history - Paginated action history (?page&limit&order)
//
// Configuration:
//   - GET /api/configs - List available board presets
//   - GET /api/configs/{name} - Load one preset
//   - POST /api/configs - Save a preset
//
// Errors are returned as JSON:
//
//	{"error": "position out of bounds: (9,9)"}
//
// Unknown sessions and configs answer 404. Coordinates off the board and
// invalid configurations answer 400. A blocked move is not an error: it
// answers 200 with "success": false.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	hub.SetActionHandler(server.HandleSocketAction)
//	http.ListenAndServe(":8080", server)
package api
