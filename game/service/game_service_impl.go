package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/lightem/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.Mutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, opts *NewGameOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.BoardConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	config = applyOptions(config, opts)
	if config.Width*config.Height > MaxSessionTiles {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d tiles", ErrBoardTooLarge, config.Width, config.Height, MaxSessionTiles)
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Prefer the input configName if provided, otherwise look up the config_id by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	state := snapshot(session.Engine.GetState())
	log.WithFields(log.Fields{
		"session": session.ID,
		"config":  configID,
		"width":   config.Width,
		"height":  config.Height,
		"seed":    state.Seed,
	}).Info("session created")

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      state,
		GameConfig:     session.Config,
	}, nil
}

// applyOptions returns a copy of config with the requested overrides
func applyOptions(config *engine.BoardConfig, opts *NewGameOptions) *engine.BoardConfig {
	if opts == nil {
		return config
	}

	custom := *config
	if opts.Width != nil {
		custom.Width = *opts.Width
	}
	if opts.Height != nil {
		custom.Height = *opts.Height
	}
	if opts.SourceRow != nil {
		custom.SourceRow = *opts.SourceRow
	}
	if opts.SourceCol != nil {
		custom.SourceCol = *opts.SourceCol
	}
	if opts.Seed != nil {
		seed := *opts.Seed
		custom.Seed = &seed
	}
	if opts.Scramble != nil {
		custom.Scramble = *opts.Scramble
	}
	if opts.LockOnSolve != nil {
		custom.LockOnSolve = *opts.LockOnSolve
	}
	return &custom
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      snapshot(session.Engine.GetState()),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      snapshot(sess.Engine.GetState()),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// RotateTile turns one tile clockwise for a session
func (s *gameServiceImpl) RotateTile(ctx context.Context, sessionID string, row, col int, reset bool) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	step, stepEvents, err := s.apply(sess, engine.Action{Type: engine.ActionRotate, Row: row, Col: col}, 1)
	if err != nil {
		return nil, err
	}

	state := snapshot(sess.Engine.GetState())
	return &ActionResult{
		Success:   step.Success,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, stepEvents...),
		Step:      step,
	}, nil
}

// MoveSource moves the power station along a wire for a session
func (s *gameServiceImpl) MoveSource(ctx context.Context, sessionID, direction string, reset bool) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	step, stepEvents, err := s.apply(sess, engine.Action{Type: engine.ActionMove, Direction: direction}, 1)
	if err != nil {
		return nil, err
	}

	state := snapshot(sess.Engine.GetState())
	return &ActionResult{
		Success:   step.Success,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, stepEvents...),
		Step:      step,
	}, nil
}

// BulkActions executes actions in sequence until one fails or the board is solved
func (s *gameServiceImpl) BulkActions(ctx context.Context, sessionID string, actions []engine.Action, reset bool) (*BulkActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkActionResult{
		RequestedActions: len(actions),
		Events:           make([]GameEvent, 0),
		Success:          true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	start := sess.Engine.GetState()
	result.StartSource = start.Source
	result.StartPowered = start.PoweredCount

	// Limit actions to prevent abuse
	if len(actions) > engine.MaxBulkActions {
		result.Truncated = true
		result.Limit = engine.MaxBulkActions
		actions = actions[:engine.MaxBulkActions]
	}

	for i, action := range actions {
		if sess.Engine.GetState().Solved {
			result.StoppedReason = "board already solved"
			result.StopReasonCode = StopSolved
			result.StoppedOnAction = i + 1
			break
		}

		step, events, err := s.apply(sess, action, i+1)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("action %d rejected: %v", i+1, err)
			result.StopReasonCode = StopInvalidAction
			if errors.Is(err, engine.ErrOutOfBounds) {
				result.StopReasonCode = StopOutOfBounds
			}
			result.StoppedOnAction = i + 1
			break
		}

		result.Events = append(result.Events, events...)
		result.Steps = append(result.Steps, *step)

		if !step.Success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("action %d blocked: no wire leads %s", i+1, action.Direction)
			result.StopReasonCode = StopBlocked
			result.StoppedOnAction = i + 1
			break
		}
		result.ActionsExecuted++
	}

	end := snapshot(sess.Engine.GetState())
	result.GameState = end
	result.EndSource = end.Source
	result.EndPowered = end.PoweredCount
	result.Solved = end.Solved
	result.Message = end.Message
	result.Board = end.Board
	for _, d := range sess.Engine.GetPossibleMoves() {
		result.PossibleMoves = append(result.PossibleMoves, string(d))
	}

	log.WithFields(log.Fields{
		"session":   sess.ID,
		"requested": result.RequestedActions,
		"executed":  result.ActionsExecuted,
		"stop":      result.StopReasonCode,
		"solved":    result.Solved,
	}).Debug("bulk actions applied")

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return snapshot(sess.Engine.Reset()), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return snapshot(sess.Engine.GetState()), nil
}

// GetTile describes one tile of a session's board
func (s *gameServiceImpl) GetTile(ctx context.Context, sessionID string, row, col int) (*TileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	tile, err := sess.Engine.TileAt(row, col)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	wires := []engine.Direction{}
	for _, d := range engine.Directions {
		if state.Grid.HasWire(tile.Position(), d) {
			wires = append(wires, d)
		}
	}

	return &TileInfo{
		Tile:     tile,
		Shape:    engine.ShapeOf(tile),
		Glyph:    engine.Glyph(tile),
		Wires:    wires,
		IsSource: state.Source == tile.Position(),
	}, nil
}

// GetActionHistory returns paginated action history
func (s *gameServiceImpl) GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetActionHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	actions := []engine.ActionHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			actions = append(actions, history[i])
		}
	} else if start < total {
		actions = append(actions, history[start:end]...)
	}

	return &HistoryResponse{
		Actions:      actions,
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available board configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// getSession looks up a session and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// apply runs one action and describes it as a step plus events
func (s *gameServiceImpl) apply(sess *Session, action engine.Action, idx int) (*StepInfo, []GameEvent, error) {
	before := sess.Engine.GetState()
	from := before.Source
	poweredBefore := before.PoweredCount
	wasSolved := before.Solved

	success, err := sess.Engine.Apply(action)
	if err != nil {
		return nil, nil, err
	}

	state := sess.Engine.GetState()
	step := &StepInfo{
		Idx:           idx,
		Action:        action.Type,
		Direction:     action.Direction,
		From:          from,
		To:            state.Source,
		PoweredBefore: poweredBefore,
		PoweredAfter:  state.PoweredCount,
		Success:       success,
		Solved:        state.Solved,
	}
	if last := sess.Engine.GetLastAction(); last != nil {
		step.Target = last.Target
		step.Direction = string(last.Direction)
	}

	now := time.Now()
	events := []GameEvent{}
	switch {
	case action.Type == engine.ActionRotate:
		events = append(events, GameEvent{
			Type:      EventRotate,
			Message:   fmt.Sprintf("Rotated tile %s", step.Target),
			Timestamp: now,
			Position:  step.Target,
		})
	case success:
		events = append(events, GameEvent{
			Type:      EventMove,
			Message:   fmt.Sprintf("Moved power station %s to %s", step.Direction, state.Source),
			Timestamp: now,
			Position:  state.Source,
		})
	default:
		events = append(events, GameEvent{
			Type:      EventMoveBlocked,
			Message:   fmt.Sprintf("No wire leads %s from %s", step.Direction, from),
			Timestamp: now,
			Position:  from,
		})
	}

	if state.PoweredCount != poweredBefore {
		events = append(events, GameEvent{
			Type:      EventPowerChange,
			Message:   fmt.Sprintf("Powered tiles %d -> %d of %d", poweredBefore, state.PoweredCount, state.TotalTiles),
			Timestamp: now,
			Position:  state.Source,
		})
	}
	if state.Solved && !wasSolved {
		events = append(events, GameEvent{
			Type:      EventSolved,
			Message:   state.Message,
			Timestamp: now,
		})
	}

	return step, events, nil
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      EventReset,
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

// snapshot copies state with the rendered board view filled in.
// Callers hold s.mu.
func snapshot(state *engine.GameState) *engine.GameState {
	snap := state.Snapshot()
	if snap != nil {
		snap.Board = engine.RenderBoard(snap.Grid, snap.Source)
	}
	return snap
}
