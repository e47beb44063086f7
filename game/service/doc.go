// Package service provides the business logic layer for Light 'Em All.
//
// The service package implements:
//   - Multi-session board management
//   - Configuration lookup with per-session overrides
//   - Rotate, move, and bulk action processing
//   - Action history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the input adapters (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine, and every call is
// serialized by the service so an engine is never mutated concurrently.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "easy", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.RotateTile(ctx, sessionInfo.ID, 0, 1, false)
//
// Bulk Actions:
//
// BulkActions runs at most engine.MaxBulkActions actions. It stops early when
// the board is solved, when a move has no wire to follow, or when an action
// is rejected, and reports the reason as a machine-friendly code.
package service
