package engine

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Empty marks a cell without a tile
	Empty = 0

	// Validation constants
	MinBoardSize  = 2
	MaxBoardSize  = 16
	MaxSpawnCount = 8
)

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrOutOfBounds      = errors.New("position out of bounds")
	ErrInvalidTile      = errors.New("invalid tile value")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrGameOver         = errors.New("game is over")
)

// Direction selects the edge tiles slide toward
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// MarshalText encodes the direction by name
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// ParseDirection converts a direction name ("up", "down", "left", "right")
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, name)
}

// Position is a row/column coordinate on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Trace records one tile movement or merge produced by a shift.
// From holds a single position for a plain move and both source
// positions, in line order, for a merge.
type Trace struct {
	From   []Position `json:"from"`
	To     Position   `json:"to"`
	Value  int        `json:"value"`
	Merged bool       `json:"merged,omitempty"`
}

// ValueRange is the half-open range [Min, Max) spawn values are drawn from
type ValueRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Validate checks that the range is non-empty and yields positive tiles
func (r ValueRange) Validate() error {
	if r.Min < 1 {
		return fmt.Errorf("%w: spawn range min must be at least 1, got %d", ErrInvalidConfig, r.Min)
	}
	if r.Max <= r.Min {
		return fmt.Errorf("%w: spawn range [%d, %d) is empty", ErrInvalidConfig, r.Min, r.Max)
	}
	return nil
}

// Rand is the random source used for spawning. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Status is the whole-game state
type Status string

const (
	Playing  Status = "playing"
	GameOver Status = "game_over"
)

// GameState is a serializable snapshot of a game
type GameState struct {
	Size      int        `json:"size"`
	Tiles     [][]int    `json:"tiles"`
	Score     int        `json:"score"`
	MoveCount int        `json:"move_count"`
	Status    Status     `json:"status"`
	GameOver  bool       `json:"game_over"`
	MaxTile   int        `json:"max_tile"`
	Spawned   []Position `json:"spawned,omitempty"`
	Rendered  string     `json:"rendered"`
	// TotalMoves counts every attempted move, including no-ops
	TotalMoves int    `json:"total_moves"`
	ConfigName string `json:"config_name"`
}

// MoveHistoryEntry represents a single move attempt in the game history
type MoveHistoryEntry struct {
	Direction   Direction `json:"direction"`
	Success     bool      `json:"success"`
	Traces      int       `json:"traces"`
	Merges      int       `json:"merges"`
	ScoreGained int       `json:"score_gained"`
	Score       int       `json:"score"`
	Timestamp   int64     `json:"timestamp"`
	MoveNumber  int       `json:"move_number"`
}
