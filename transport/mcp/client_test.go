package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/lightem/game/engine"
	"github.com/wricardo/lightem/game/service"
)

func lineState(solved bool) *engine.GameState {
	grid, _ := engine.NewGrid(3, 1)
	grid.Tiles[0][0].East = true
	grid.Tiles[0][1].West = true
	grid.Tiles[0][1].East = solved
	grid.Tiles[0][1].North = !solved
	grid.Tiles[0][2].West = true
	state := &engine.GameState{
		Grid:        grid,
		Source:      engine.Position{Row: 0, Col: 0},
		PowerSource: engine.Position{Row: 0, Col: 0},
		TotalTiles:  3,
		ConfigName:  "line",
	}
	state.Recompute(nil)
	return state
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "a1b2", "powered_count": 4})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/a1b2", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "a1b2" {
		t.Errorf("Expected id a1b2, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"JSON error body", http.StatusNotFound, `{"error":"session not found: zz"}`, "session not found: zz"},
		{"Plain error body", http.StatusInternalServerError, "Internal Server Error", "API error: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			err := client.apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "a1b2",
			ConfigName: "easy",
			GameState:  lineState(false),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{
		"config_id": "easy",
		"width":     float64(5),
		"seed":      float64(99),
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "a1b2") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if body["config_id"] != "easy" || body["width"] != float64(5) || body["seed"] != float64(99) {
		t.Errorf("Unexpected request body %v", body)
	}
	if _, ok := body["height"]; ok {
		t.Error("Height should not be sent when not provided")
	}
}

func TestClient_rotateTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/a1b2/rotate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["row"] != float64(0) || req["col"] != float64(1) {
			t.Errorf("Unexpected request %v", req)
		}

		json.NewEncoder(w).Encode(service.ActionResult{
			Success:   true,
			GameState: lineState(true),
			Events:    []service.GameEvent{{Type: service.EventSolved, Message: "Board solved"}},
			Step: &service.StepInfo{
				Idx: 1, Action: engine.ActionRotate, Target: engine.Position{Row: 0, Col: 1},
				PoweredBefore: 2, PoweredAfter: 3, Success: true, Solved: true,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleRotateTile(context.Background(), callTool("rotate_tile", map[string]interface{}{
		"session_id": "a1b2",
		"row":        float64(0),
		"col":        float64(1),
	}))
	if err != nil {
		t.Fatalf("rotateTile failed: %v", err)
	}

	text := resultText(t, result)
	for _, expected := range []string{"✓ Action applied", "rotate (0,1) powered 2→3", "solved: Board solved", "SOLVED"} {
		if !strings.Contains(text, expected) {
			t.Errorf("Expected %q in output, got: %s", expected, text)
		}
	}
}

func TestClient_rotateTileMissingCoordinates(t *testing.T) {
	client := NewClient("http://localhost:8080")
	result, err := client.handleRotateTile(context.Background(), callTool("rotate_tile", map[string]interface{}{
		"session_id": "a1b2",
		"row":        float64(0),
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error for missing col")
	}
}

func TestClient_moveSourceBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.ActionResult{
			Success:   false,
			GameState: lineState(false),
			Step:      &service.StepInfo{Action: engine.ActionMove, Direction: "north"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleMoveSource(context.Background(), callTool("move_source", map[string]interface{}{
		"session_id": "a1b2",
		"direction":  "north",
	}))
	if err != nil {
		t.Fatalf("moveSource failed: %v", err)
	}
	if result.IsError {
		t.Error("A blocked move should not be a tool error")
	}
	if text := resultText(t, result); !strings.Contains(text, "✗ Action had no effect") {
		t.Errorf("Expected blocked marker, got: %s", text)
	}
}

func TestClient_sessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found: zz"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleGameState(context.Background(), callTool("game_state", map[string]interface{}{"session_id": "zz"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected tool error")
	}
	if text := resultText(t, result); !strings.Contains(text, "session not found") {
		t.Errorf("Expected not found message, got: %s", text)
	}
}

func TestParseActions(t *testing.T) {
	actions, err := parseActions([]interface{}{
		map[string]interface{}{"type": "Rotate", "row": float64(2), "col": float64(3)},
		map[string]interface{}{"type": "move", "direction": "east"},
		"south",
	})
	if err != nil {
		t.Fatalf("parseActions failed: %v", err)
	}

	expected := []engine.Action{
		{Type: engine.ActionRotate, Row: 2, Col: 3},
		{Type: engine.ActionMove, Direction: "east"},
		{Type: engine.ActionMove, Direction: "south"},
	}
	if len(actions) != len(expected) {
		t.Fatalf("Expected %d actions, got %d", len(expected), len(actions))
	}
	for i := range expected {
		if actions[i] != expected[i] {
			t.Errorf("Action %d: expected %+v, got %+v", i, expected[i], actions[i])
		}
	}

	if _, err := parseActions([]interface{}{float64(1)}); err == nil {
		t.Error("Expected error for a numeric action")
	}
}

func TestClient_bulkActions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/a1b2/bulk" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req struct {
			Actions []engine.Action `json:"actions"`
			Reset   bool            `json:"reset"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Actions) != 2 || !req.Reset {
			t.Errorf("Unexpected request %+v", req)
		}

		json.NewEncoder(w).Encode(service.BulkActionResult{
			ActionsExecuted:  1,
			RequestedActions: 2,
			StoppedReason:    "action 2 blocked: no wire leads north",
			StopReasonCode:   service.StopBlocked,
			StartPowered:     2,
			EndPowered:       3,
			GameState:        lineState(true),
			Steps: []service.StepInfo{
				{Idx: 1, Action: engine.ActionRotate, Target: engine.Position{Row: 0, Col: 1}, PoweredBefore: 2, PoweredAfter: 3, Success: true},
				{Idx: 2, Action: engine.ActionMove, Direction: "north", PoweredBefore: 3, PoweredAfter: 3},
			},
			PossibleMoves: []string{"east"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleBulkActions(context.Background(), callTool("bulk_actions", map[string]interface{}{
		"session_id": "a1b2",
		"reset":      true,
		"actions": []interface{}{
			map[string]interface{}{"type": "rotate", "row": float64(0), "col": float64(1)},
			"north",
		},
	}))
	if err != nil {
		t.Fatalf("bulkActions failed: %v", err)
	}

	text := resultText(t, result)
	for _, expected := range []string{"Executed 1/2 actions", "Stopped: action 2 blocked", "Powered: 2 → 3", "2. move north", "Possible moves: east"} {
		if !strings.Contains(text, expected) {
			t.Errorf("Expected %q in output, got: %s", expected, text)
		}
	}
}

func TestClient_describeTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/a1b2/tiles/0/1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		tile := engine.Tile{Row: 0, Col: 1, West: true, North: true, Powered: true}
		json.NewEncoder(w).Encode(service.TileInfo{
			Tile:  tile,
			Shape: engine.ShapeOf(tile),
			Glyph: engine.Glyph(tile),
			Wires: []engine.Direction{engine.West},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleDescribeTile(context.Background(), callTool("describe_tile", map[string]interface{}{
		"session_id": "a1b2",
		"row":        float64(0),
		"col":        float64(1),
	}))
	if err != nil {
		t.Fatalf("describeTile failed: %v", err)
	}

	text := resultText(t, result)
	for _, expected := range []string{"Tile at (0,1)", "Glyph: ┘", "Shape: corner", "Open stubs: north, west", "Wired to: west", "Powered: true", "no matching neighbor stub"} {
		if !strings.Contains(text, expected) {
			t.Errorf("Expected %q in output, got: %s", expected, text)
		}
	}
}

func TestClient_actionHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/sessions/a1b2/history":
			if r.URL.Query().Get("page") != "2" {
				t.Errorf("Expected page=2, got %s", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(service.HistoryResponse{
				Actions: []engine.ActionHistoryEntry{
					{Action: engine.ActionRotate, Target: engine.Position{Row: 1, Col: 1}, Success: true, PoweredCount: 5, ActionNumber: 3},
				},
				TotalActions: 3,
				Page:         2,
				TotalPages:   2,
			})
		case "/api/sessions/a1b2/state":
			json.NewEncoder(w).Encode(lineState(false))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleActionHistory(context.Background(), callTool("action_history", map[string]interface{}{
		"session_id": "a1b2",
		"page":       float64(2),
	}))
	if err != nil {
		t.Fatalf("actionHistory failed: %v", err)
	}

	text := resultText(t, result)
	for _, expected := range []string{"Page 2/2", "Total (cumulative): 3", "3. rotate (1,1) ✓ [Powered: 5]", "no actions since last reset"} {
		if !strings.Contains(text, expected) {
			t.Errorf("Expected %q in output, got: %s", expected, text)
		}
	}
}

func TestClient_listConfigs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]service.ConfigInfo{
			{ConfigID: "tutorial", Name: "Tutorial", Description: "A 3x3 warm-up", Width: 3, Height: 3, Scramble: true, Seeded: true},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListConfigs(context.Background(), callTool("list_configs", nil))
	if err != nil {
		t.Fatalf("listConfigs failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "config_id: tutorial") || !strings.Contains(text, "Board: 3x3, fixed seed") {
		t.Errorf("Unexpected output: %s", text)
	}
}

func TestFormatGameState(t *testing.T) {
	state := lineState(false)
	state.Message = "Powered: 2/3"

	result := formatGameState(state)

	expectedFields := []string{
		"Board: 3x1",
		"Source: (0,0)",
		"Powered: 2/3",
		"╶@┘+╴",
	}
	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
	if strings.Contains(result, "SOLVED") {
		t.Error("Unsolved board should not be marked solved")
	}
}

func TestFormatGameState_Solved(t *testing.T) {
	result := formatGameState(lineState(true))

	if !strings.Contains(result, "🎉 SOLVED!") {
		t.Errorf("Expected '🎉 SOLVED!' in result, got: %s", result)
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected output for nil state: %s", got)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Light 'Em All - Complete Instructions",
		"GAME OBJECTIVE:",
		"WIRES:",
		"ACTIONS:",
		"COORDINATES:",
		"BOARD LEGEND:",
		"STRATEGY:",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
