package main

import (
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/adapter"
	"golang.org/x/term"
)

// timeNow is replaced in tests
var timeNow = time.Now

// runSetup prompts for the TMDB API key (hidden input) and saves the config
func runSetup(cfg *adapter.Config, configPath string, out io.Writer) error {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Movie Tracker setup")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out, "Create an API key at https://www.themoviedb.org/settings/api")
	fmt.Fprint(out, "TMDB API key: ")

	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	fmt.Fprintln(out) // Add newline after hidden input

	apiKey := strings.TrimSpace(string(keyBytes))
	if apiKey == "" {
		return fmt.Errorf("%w: API key cannot be empty", errUsage)
	}
	cfg.TMDB.APIKey = apiKey

	if err := adapter.SaveConfig(cfg, configPath); err != nil {
		return err
	}

	fmt.Fprintln(out, "✓ Configuration saved!")
	return nil
}
