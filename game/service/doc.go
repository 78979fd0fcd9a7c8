// Package service provides the business logic layer for merge2048.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing with merge and game over events
//   - Paginated move history
//   - Prometheus metrics for moves, merges and sessions
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading.
//
// Architecture:
//
// The service layer sits between the drivers (terminal player, analyzer) and
// the game engine. Every operation takes a context and returns early once it
// is canceled. Moves are serialized by the service lock, so a board is only
// ever mutated by one caller at a time.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	metrics := service.NewMetrics(prometheus.DefaultRegisterer, sessionMgr.Count)
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithMetrics(metrics))
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "left")
//	if err == nil && !result.Success {
//		// nothing moved; the board is unchanged
//	}
package service
