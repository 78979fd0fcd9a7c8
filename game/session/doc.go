// Package session provides session management for merge2048 games.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management and expiry cleanup
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session holds its own engine instance, and with it its own
// board, plus metadata like creation time and last access time. Boards are
// never shared between sessions.
//
// Session Identifiers:
//
// Generated IDs are the first 8 hex characters of a random UUID. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
//	// Drop sessions idle for a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
