package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/lightem/game/engine"
	"github.com/wricardo/lightem/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Light 'Em All",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Light 'Em All - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Rotate tiles until every tile on the board is powered. Power flows from the
power station (@) along wires; a wire exists only where two neighboring tiles
both have a stub facing each other.

AVAILABLE TOOLS:
- create_session: Create a new board (optional config_id, width, height, seed)
- list_sessions / get_session: Inspect sessions
- game_state: Board rendering, powered count, solved flag
- rotate_tile: Turn one tile a quarter turn clockwise
- move_source: Move the power station along an existing wire
- bulk_actions: Several rotations/moves in one call
- reset_game: Restore the generated board
- action_history: Past actions
- list_configs: Available board presets
- describe_tile: Stubs, shape, and active wires of one tile
- game_instructions: Full rules and board legend`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection and board overrides",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Board preset to use (see list_configs). Defaults to the server default.",
				},
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Board width override",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Board height override",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for a reproducible board",
				},
				"scramble": map[string]interface{}{
					"type":        "boolean",
					"description": "Randomly rotate tiles after generation",
				},
				"lock_on_solve": map[string]interface{}{
					"type":        "boolean",
					"description": "Refuse further moves once the board is solved",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board with power status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rotate_tile",
		Description: "Rotate one tile 90 degrees clockwise",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the tile (0-based, top to bottom)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the tile (0-based, left to right)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before rotating",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleRotateTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_source",
		Description: "Move the power station one tile along an existing wire",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"north", "east", "south", "west"},
					"description": "Direction to move",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMoveSource)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_actions",
		Description: fmt.Sprintf("Execute up to %d rotations and moves in sequence. Stops when the board is solved, a move is blocked, or an action is invalid.", engine.MaxBulkActions),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"actions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"type":      map[string]interface{}{"type": "string", "enum": []string{"rotate", "move"}},
							"row":       map[string]interface{}{"type": "integer"},
							"col":       map[string]interface{}{"type": "integer"},
							"direction": map[string]interface{}{"type": "string"},
						},
						"required": []string{"type"},
					},
					"description": "Actions, e.g. [{\"type\":\"rotate\",\"row\":0,\"col\":1},{\"type\":\"move\",\"direction\":\"east\"}]",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before executing",
				},
			},
			Required: []string{"session_id", "actions"},
		},
	}, c.handleBulkActions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Restore the board as it was generated",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get action history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleActionHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Describe one tile: open stubs, shape, which neighbors it is wired to, and whether it is powered",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the tile (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the tile (0-based)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules and the board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, or an empty map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	for _, name := range []string{"width", "height", "seed"} {
		if v, ok := intArg(args, name); ok {
			body[name] = v
		}
	}
	for _, name := range []string{"scramble", "lock_on_solve"} {
		if v, ok := args[name].(bool); ok {
			body[name] = v
		}
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil {
			status = fmt.Sprintf(", Powered: %d/%d", s.GameState.PoweredCount, s.GameState.TotalTiles)
			if s.GameState.Solved {
				status += " SOLVED"
			}
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s%s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleRotateTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)

	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	body := map[string]interface{}{
		"row":   row,
		"col":   col,
		"reset": reset,
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/rotate"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleMoveSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	reset, _ := args["reset"].(bool)

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

// parseActions accepts action objects, or bare direction strings as moves
func parseActions(raw []interface{}) ([]engine.Action, error) {
	actions := make([]engine.Action, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			actions = append(actions, engine.Action{Type: engine.ActionMove, Direction: v})
		case map[string]interface{}:
			kind, _ := v["type"].(string)
			action := engine.Action{Type: engine.ActionKind(strings.ToLower(kind))}
			action.Row, _ = intArg(v, "row")
			action.Col, _ = intArg(v, "col")
			action.Direction, _ = v["direction"].(string)
			actions = append(actions, action)
		default:
			return nil, fmt.Errorf("action %d: expected an object or a direction string", i+1)
		}
	}
	return actions, nil
}

func (c *Client) handleBulkActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	raw, _ := args["actions"].([]interface{})
	reset, _ := args["reset"].(bool)

	actions, err := parseActions(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"actions": actions,
		"reset":   reset,
	}

	var result service.BulkActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkActionResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(&history)

	// Current segment comes from live state; history alone is still useful if that fails
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err == nil {
		result += "\n" + formatCurrentSegment(&state)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		extras := ""
		if config.Seeded {
			extras += ", fixed seed"
		}
		if !config.Scramble {
			extras += ", unscrambled"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d%s\n\n",
			config.Name, config.ConfigID, config.Description, config.Width, config.Height, extras)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var info service.TileInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/tiles/%d/%d", row, col)), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTileInfo(&info)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Light 'Em All - Complete Instructions

GAME OBJECTIVE:
Light every tile on the board. The board is a grid of tiles, each with wire
stubs on some of its four sides. Power flows out of the power station and
along every wire it can reach. When all tiles are powered the board is solved.

WIRES:
• Two neighboring tiles are wired together only if BOTH have a stub facing
  each other. A stub pointing at a neighbor without a matching stub carries
  nothing.
• Stubs pointing off the edge of the board carry nothing.

ACTIONS:
• rotate_tile: Turns one tile 90 degrees clockwise. Its north stub becomes
  east, east becomes south, south becomes west, west becomes north. Four
  rotations bring a tile back to where it started. Any tile may be rotated,
  including the one under the power station.
• move_source: Moves the power station one tile north/east/south/west, but
  only along an existing wire. A move without a wire is rejected and nothing
  changes; it is not an error.
• bulk_actions: Several of the above in order. Stops early when the board is
  solved, a move is blocked, or an action is invalid.

COORDINATES:
• (row, col), 0-based. Row 0 is the top, column 0 is the left edge.

BOARD LEGEND:
Each tile is drawn as a box-drawing glyph showing its open stubs, followed by
a marker:
  @  power station
  +  powered
     (blank) unpowered
Glyphs: ╵╶╷╴ dead ends, │─ straights, └┌┐┘ corners, ├┬┤┴ tees, ┼ cross, · no stubs.

STRATEGY:
• Every generated board has a solution: its tiles come from a spanning tree,
  so a solved board has exactly one wire path between any two tiles.
• Corners of the board can only hold dead ends, corners, or nothing useful
  pointing outward. Fix the edges first, then work inward.
• Dead ends must point toward the neighbor they connect to.
• Use describe_tile to check which wires a tile currently forms.

Good luck lighting them all!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	width, height := 0, 0
	if state.Grid != nil {
		width, height = state.Grid.Width, state.Grid.Height
	}
	fmt.Fprintf(&result, "Board: %dx%d | Source: %s | Powered: %d/%d | Actions: %d\n\n",
		width, height, state.Source, state.PoweredCount, state.TotalTiles, state.TotalActions)

	lines := state.Board
	if len(lines) == 0 {
		lines = engine.RenderBoard(state.Grid, state.Source)
	}
	for _, line := range lines {
		result.WriteString(line)
		result.WriteString("\n")
	}

	if state.Solved {
		result.WriteString("\n🎉 SOLVED!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatStep(s *service.StepInfo) string {
	status := "✗"
	if s.Success {
		status = "✓"
	}
	switch s.Action {
	case engine.ActionRotate:
		return fmt.Sprintf("rotate %s powered %d→%d %s", s.Target, s.PoweredBefore, s.PoweredAfter, status)
	default:
		return fmt.Sprintf("move %s %s→%s powered %d→%d %s", s.Direction, s.From, s.To, s.PoweredBefore, s.PoweredAfter, status)
	}
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Action applied\n")
	} else {
		b.WriteString("✗ Action had no effect\n")
	}

	if result.Step != nil {
		fmt.Fprintf(&b, "Step: %s\n", formatStep(result.Step))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkActionResult(sessionID string, result *service.BulkActionResult) string {
	var b strings.Builder

	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s\n", sessionID, configName)

	fmt.Fprintf(&b, "Executed %d/%d actions\n", result.ActionsExecuted, result.RequestedActions)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d actions\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}
	fmt.Fprintf(&b, "Powered: %d → %d\n", result.StartPowered, result.EndPowered)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. %s\n", s.Idx, formatStep(&s))
		}
	}

	if len(result.PossibleMoves) > 0 {
		b.WriteString("\nPossible moves: ")
		b.WriteString(strings.Join(result.PossibleMoves, ","))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatTileInfo(info *service.TileInfo) string {
	t := info.Tile

	stubs := make([]string, 0, 4)
	for _, d := range t.OpenSides() {
		stubs = append(stubs, string(d))
	}
	wires := make([]string, 0, len(info.Wires))
	for _, d := range info.Wires {
		wires = append(wires, string(d))
	}

	list := func(items []string) string {
		if len(items) == 0 {
			return "none"
		}
		return strings.Join(items, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tile at (%d,%d):\n", t.Row, t.Col)
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "Glyph: %s\n", info.Glyph)
	fmt.Fprintf(&b, "Shape: %s\n", info.Shape)
	fmt.Fprintf(&b, "Open stubs: %s\n", list(stubs))
	fmt.Fprintf(&b, "Wired to: %s\n", list(wires))
	fmt.Fprintf(&b, "Powered: %v\n", t.Powered)
	if info.IsSource {
		b.WriteString("The power station is on this tile.\n")
	}
	if len(stubs) > len(wires) {
		b.WriteString("Some stubs have no matching neighbor stub; rotating this tile or its neighbors may connect them.\n")
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalActions)

	for _, entry := range history.Actions {
		b.WriteString(formatEntry(entry))
	}

	return b.String()
}

func formatEntry(entry engine.ActionHistoryEntry) string {
	status := "✓"
	if !entry.Success {
		status = "✗"
	}
	detail := entry.Target.String()
	if entry.Action == engine.ActionMove {
		detail = fmt.Sprintf("%s %s→%s", entry.Direction, entry.FromSource, entry.ToSource)
	}
	return fmt.Sprintf("%d. %s %s %s [Powered: %d]\n", entry.ActionNumber, entry.Action, detail, status, entry.PoweredCount)
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Since last reset — Actions: %d\n\n", state.CurrentActionsCount)
	if len(state.CurrentActions) == 0 {
		return header + "(no actions since last reset)"
	}
	var b strings.Builder
	b.WriteString(header)
	for _, entry := range state.CurrentActions {
		b.WriteString(formatEntry(entry))
	}
	return b.String()
}
