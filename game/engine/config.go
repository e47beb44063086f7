package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateBoardConfig validates a board configuration for correctness and playability
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfiguration)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfiguration)
	}

	// Validate board size
	if config.Width < MinBoardSize {
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfiguration, config.Width)
	}
	if config.Height < MinBoardSize {
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidConfiguration, config.Height)
	}

	// Validate source placement
	if config.SourceRow < 0 || config.SourceRow >= config.Height ||
		config.SourceCol < 0 || config.SourceCol >= config.Width {
		return fmt.Errorf("%w: source (%d,%d) is outside the %dx%d board",
			ErrInvalidConfiguration, config.SourceRow, config.SourceCol, config.Width, config.Height)
	}

	// Validate format strings
	if config.Messages.PowerStatus != "" && strings.Count(config.Messages.PowerStatus, "%d") != 2 {
		return fmt.Errorf("%w: messages.power_status must contain two %%d for powered and total tiles",
			ErrInvalidConfiguration)
	}

	return nil
}

// NewBoardConfig returns a validated configuration for an ad-hoc board with default messages
func NewBoardConfig(width, height int) *BoardConfig {
	config := &BoardConfig{
		Name:        fmt.Sprintf("custom-%dx%d", width, height),
		Description: fmt.Sprintf("Custom %dx%d board", width, height),
		Width:       width,
		Height:      height,
		Scramble:    true,
	}
	applyDefaultMessages(config)
	return config
}

// LoadBoardConfig loads a board configuration from a JSON file
func LoadBoardConfig(filename string) (*BoardConfig, error) {
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

	var config BoardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateBoardConfig(&config); err != nil {
		return nil, err
	}
	applyDefaultMessages(&config)

	return &config, nil
}

// DefaultBoardConfig returns the built-in 5x5 scrambled board
func DefaultBoardConfig() *BoardConfig {
	config := NewBoardConfig(5, 5)
	config.Name = "default"
	config.Description = "Default 5x5 board with the power station in the top-left corner"
	return config
}

// applyDefaultMessages fills any empty message with the built-in text
func applyDefaultMessages(config *BoardConfig) {
	if config.Messages.Welcome == "" {
		config.Messages.Welcome = "Rotate the tiles to bring power to the whole board!"
	}
	if config.Messages.Solved == "" {
		config.Messages.Solved = "Every tile is powered. You win!"
	}
	if config.Messages.Rotated == "" {
		config.Messages.Rotated = "Tile rotated."
	}
	if config.Messages.Moved == "" {
		config.Messages.Moved = "Power station moved."
	}
	if config.Messages.CantMove == "" {
		config.Messages.CantMove = "No wire leads that way."
	}
	if config.Messages.PowerStatus == "" {
		config.Messages.PowerStatus = "Powered: %d/%d"
	}
}
