package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	GetBoard() *Board
	Reset() error
	Status() Status
	IsGameOver() bool
	GetScore() int

	// Movement operations
	Move(direction Direction) (*MoveOutcome, error)
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *GameConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// MoveOutcome is the result of one move attempt
type MoveOutcome struct {
	Moved   bool
	Traces  []Trace
	Spawned []Position
	Status  Status
}

// GameEngine implements the Engine interface
type GameEngine struct {
	core    Core
	board   *Board
	config  *GameConfig
	rng     Rand
	status  Status
	spawned []Position
	history []MoveHistoryEntry
}

// NewRand returns a seeded random source; seed zero derives one from the clock
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewEngine creates a game from the configuration and starts the first turn.
// A nil rng uses a source seeded from config.Seed.
func NewEngine(config *GameConfig, rng Rand) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(config.Seed)
	}

	e := &GameEngine{
		core:   NewCore(),
		config: config,
		rng:    rng,
	}
	if err := e.start(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a game with DefaultConfig
func NewEngineWithDefaults(rng Rand) *GameEngine {
	e, err := NewEngine(DefaultConfig(), rng)
	if err != nil {
		panic(fmt.Sprintf("default config rejected: %v", err))
	}
	return e
}

func (e *GameEngine) start() error {
	board, err := NewBoard(e.config.BoardSize, e.config.InitialTiles)
	if err != nil {
		return err
	}
	e.board = board
	e.status = Playing
	e.spawned = nil
	return e.beginTurn()
}

// beginTurn checks for game over and spawns the turn's tiles. The check runs
// again after spawning so a board filled without merges ends the game at once.
func (e *GameEngine) beginTurn() error {
	if e.core.IsGameOver(e.board) {
		e.status = GameOver
		e.spawned = nil
		return nil
	}

	spawned, err := e.board.Generate(e.rng, e.config.SpawnCount, e.config.SpawnRange)
	if err != nil {
		return err
	}
	e.spawned = spawned

	if e.core.IsGameOver(e.board) {
		e.status = GameOver
	}
	return nil
}

// GetBoard returns the live board
func (e *GameEngine) GetBoard() *Board {
	return e.board
}

// GetState returns a snapshot of the current game
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		Size:       e.board.Size(),
		Tiles:      e.board.Tiles(),
		Score:      e.board.Score(),
		MoveCount:  e.board.MoveCount(),
		Status:     e.status,
		GameOver:   e.status == GameOver,
		MaxTile:    MaxTile(e.board),
		Spawned:    append([]Position(nil), e.spawned...),
		Rendered:   e.board.String(),
		TotalMoves: len(e.history),
		ConfigName: e.config.Name,
	}
}

// Reset starts a fresh game from the configuration. History is kept.
func (e *GameEngine) Reset() error {
	return e.start()
}

// Status returns the whole-game state
func (e *GameEngine) Status() Status {
	return e.status
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.status == GameOver
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.board.Score()
}

// Move shifts the board. A no-op move returns Moved=false and changes nothing;
// otherwise the next turn begins and new tiles are spawned.
func (e *GameEngine) Move(direction Direction) (*MoveOutcome, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(direction))
	}
	if e.status == GameOver {
		return nil, ErrGameOver
	}

	scoreBefore := e.board.Score()
	traces := e.core.Shift(e.board, direction)
	outcome := &MoveOutcome{Traces: traces, Status: e.status}

	if len(traces) > 0 {
		if err := e.beginTurn(); err != nil {
			return nil, err
		}
		outcome.Moved = true
		outcome.Spawned = append([]Position(nil), e.spawned...)
		outcome.Status = e.status
	}

	e.addMoveToHistory(direction, traces, e.board.Score()-scoreBefore)
	return outcome, nil
}

// CanMove checks whether shifting in direction would change the board
func (e *GameEngine) CanMove(direction Direction) bool {
	if e.status == GameOver || !direction.Valid() {
		return false
	}
	return len(e.core.Shift(e.board.Clone(), direction)) > 0
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, d := range Directions {
		if e.CanMove(d) {
			possible = append(possible, d)
		}
	}
	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetMoveHistory returns a copy of the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return append([]MoveHistoryEntry(nil), e.history...)
}

// GetLastMove returns a copy of the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}

func (e *GameEngine) addMoveToHistory(direction Direction, traces []Trace, gained int) {
	e.history = append(e.history, MoveHistoryEntry{
		Direction:   direction,
		Success:     len(traces) > 0,
		Traces:      len(traces),
		Merges:      CountMerges(traces),
		ScoreGained: gained,
		Score:       e.board.Score(),
		Timestamp:   time.Now().Unix(),
		MoveNumber:  len(e.history) + 1,
	})
}
