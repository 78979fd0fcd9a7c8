// Package config provides configuration management for merge2048 games.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Configuration validation and verification
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations live in the configs directory as name.json, name.yaml
// or name.yml. Each configuration defines:
//   - The board size
//   - How many tiles spawn per turn and the half-open range of their values
//   - An optional starting layout (row-major initial_tiles)
//   - An optional seed for reproducible spawns
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("big")
//
//	// Get default configuration (classic, else the first valid file)
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
package config
