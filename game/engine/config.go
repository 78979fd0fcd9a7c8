package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GameConfig describes the board and spawn rules of a game
type GameConfig struct {
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description" yaml:"description"`
	BoardSize    int        `json:"board_size" yaml:"board_size"`
	SpawnCount   int        `json:"spawn_count" yaml:"spawn_count"`
	SpawnRange   ValueRange `json:"spawn_range" yaml:"spawn_range"`
	InitialTiles []int      `json:"initial_tiles,omitempty" yaml:"initial_tiles,omitempty"`
	// Seed fixes the spawn sequence; zero picks a time based seed
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// ValidateGameConfig validates a game configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if config.BoardSize < MinBoardSize || config.BoardSize > MaxBoardSize {
		return fmt.Errorf("%w: board_size must be between %d and %d, got %d",
			ErrInvalidConfig, MinBoardSize, MaxBoardSize, config.BoardSize)
	}

	if config.SpawnCount < 1 || config.SpawnCount > MaxSpawnCount {
		return fmt.Errorf("%w: spawn_count must be between 1 and %d, got %d",
			ErrInvalidConfig, MaxSpawnCount, config.SpawnCount)
	}
	if config.SpawnCount >= config.BoardSize*config.BoardSize {
		return fmt.Errorf("%w: spawn_count %d would fill a %dx%d board",
			ErrInvalidConfig, config.SpawnCount, config.BoardSize, config.BoardSize)
	}

	if err := config.SpawnRange.Validate(); err != nil {
		return err
	}

	if config.InitialTiles != nil {
		if want := config.BoardSize * config.BoardSize; len(config.InitialTiles) != want {
			return fmt.Errorf("%w: initial_tiles must have %d entries to match board_size, got %d",
				ErrInvalidConfig, want, len(config.InitialTiles))
		}
		for i, v := range config.InitialTiles {
			if v < 0 {
				return fmt.Errorf("%w: initial_tiles[%d] is negative (%d)", ErrInvalidConfig, i, v)
			}
		}
	}

	return nil
}

// DecodeGameConfig parses a config document. ext selects the format: ".json"
// is decoded as JSON, anything else as YAML.
func DecodeGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	if strings.ToLower(ext) == ".json" {
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	return &config, nil
}

// LoadGameConfig loads and validates a game configuration file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := DecodeGameConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns the classic 4x4 game: one tile per turn valued 1 or 2
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Classic 4x4 board, one new tile per turn",
		BoardSize:   4,
		SpawnCount:  1,
		SpawnRange:  ValueRange{Min: 1, Max: 3},
	}
}
