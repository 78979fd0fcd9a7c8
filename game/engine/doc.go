// Package engine provides the rules of the sliding-tile merge puzzle.
//
// The engine package implements:
//   - The square Board of tiles with bounds-checked cell access
//   - Random tile spawning through an injected random source
//   - The shift/merge algorithm for all four directions
//   - Game-over detection by direct adjacency scan
//   - Game configuration loading and validation
//
// Core Types:
//
// Board owns the grid, the move counter and the score. Core is the stateless
// rule set: Shift reduces every line of a board toward one edge and returns
// the Traces describing what moved, IsGameOver reports a stuck board.
// GameEngine wraps a Board, Core and GameConfig and drives the turn cycle
// (game-over check, spawn, shift) for callers.
//
// Usage:
//
//	board, err := engine.NewBoard(4, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	rng := engine.NewRand(42)
//	board.Generate(rng, 2, engine.ValueRange{Min: 1, Max: 3})
//
//	core := engine.NewCore()
//	traces := core.Shift(board, engine.Left)
//	if len(traces) == 0 {
//		// nothing moved, ask for another direction
//	}
//
// Merge Rules:
//
// Each line is compacted toward the target edge before equal neighbours are
// compared, so gaps never block a merge while a different value does. Merges
// are pairwise from the leading edge and a merged tile does not merge again
// in the same pass: 2,2,2 becomes 4,2. A shift that changes nothing returns
// no traces and leaves the board, its move counter and score untouched.
package engine
