// Package config loads per-game settings files. A game is configured by a
// YAML file named after it in the settings directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gamewrap/internal/search"
)

// Game is one game's wrapper configuration.
type Game struct {
	// Name is the settings file base name; not part of the file itself.
	Name string `yaml:"-"`

	// Command is the command to launch, with arguments. Command-line
	// arguments passed to `run` override it.
	Command []string `yaml:"command"`

	// ProcessName names the real game process when Command only starts a
	// launcher. A regular expression.
	ProcessName string `yaml:"process_name"`

	// WindowTitle and WindowClass select the main game window for focus
	// tracking. Regular expressions; WindowClass must match the entire
	// class string.
	WindowTitle string `yaml:"window_title"`
	WindowClass string `yaml:"window_class"`

	// Hooks to load, e.g. "playtime", "pause-helper:xcape", "notify".
	Hooks []string `yaml:"hooks"`

	// PollFocus selects the polling focus monitor instead of the
	// event-driven one.
	PollFocus bool `yaml:"poll_focus"`
}

// DefaultSettingsDir is where per-game settings files live.
func DefaultSettingsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "gamewrap", "settings")
}

// Load reads <dir>/<name>.yaml.
func Load(dir, name string) (*Game, error) {
	path := filepath.Join(dir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings for %q: %w", name, err)
	}

	game := &Game{Name: name}
	if err := yaml.Unmarshal(data, game); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return game, nil
}

// Check validates the configuration for running.
func (g *Game) Check() error {
	if len(g.Command) == 0 {
		return fmt.Errorf("no command configured for %q", g.Name)
	}
	return nil
}

// Criteria builds the window-tracking query, or nil when no window fields
// are configured and focus tracking is disabled.
func (g *Game) Criteria() *search.Criteria {
	if g.WindowTitle == "" && g.WindowClass == "" {
		return nil
	}
	crit := search.New()
	crit.Require = search.RequireAll
	crit.Mask = search.MatchOnlyVisible
	if g.WindowTitle != "" {
		crit.Name = g.WindowTitle
		crit.Mask |= search.MatchName
	}
	if g.WindowClass != "" {
		// the class must match the entire string
		crit.ClassName = "^(" + g.WindowClass + ")$"
		crit.Mask |= search.MatchClassName
	}
	return &crit
}
