// Package config provides board configuration management for Light 'Em All.
//
// The config package handles:
//   - Loading board configurations from JSON files
//   - Configuration validation
//   - Default configuration selection
//   - Configuration discovery, listing, and saving
//
// Configuration Format:
//
// Board configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - Board dimensions and the power station position
//   - An optional generation seed for reproducible boards
//   - Whether tiles are scrambled after generation
//   - Status messages shown to the player
//
// Available Configurations:
//
//   - classic: 8x8 board with the station in the top-left corner
//   - easy: small 4x4 board
//   - medium: 6x6 board with the station in the middle
//   - hard: 12x12 board
//   - tutorial: seeded 3x3 board that is the same every time
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	boardConfig, err := manager.LoadConfig("easy")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
