package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wricardo/merge2048/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes carries informational messages; otherwise Errors
// lists what was wrong.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

// ValidateDir validates every config file in the manager's directory without
// touching the cache, so broken files are reported rather than skipped.
func (m *Manager) ValidateDir() ([]ValidationResult, error) {
	files, err := m.configFiles()
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(files))
	for _, filename := range files {
		results = append(results, validateFile(filepath.Join(m.configDir, filename)))
	}
	return results, nil
}

func validateFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.DecodeGameConfig(data, filepath.Ext(path))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Initial layout sanity: a playable start needs room for the first spawn
	if config.InitialTiles != nil {
		board, err := engine.NewBoard(config.BoardSize, config.InitialTiles)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
			return result
		}
		if engine.NewCore().IsGameOver(board) {
			result.Valid = false
			result.Errors = append(result.Errors, "initial_tiles describe a board that is already game over")
			return result
		}
		result.Notes = append(result.Notes, fmt.Sprintf("%d initial tiles", engine.TileCount(board)))
	}

	if config.Description == "" {
		result.Notes = append(result.Notes, "description is empty")
	}
	result.Notes = append(result.Notes, fmt.Sprintf("%dx%d board, %d spawn(s) per turn from [%d, %d)",
		config.BoardSize, config.BoardSize, config.SpawnCount, config.SpawnRange.Min, config.SpawnRange.Max))

	return result
}
