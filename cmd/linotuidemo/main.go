package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobanhawi/linotype/internal/config"
	"github.com/mobanhawi/linotype/internal/logging"
)

var version = "dev"

func main() {
	if len(os.Args) >= 2 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Printf("linotuidemo version %s\n", version)
		os.Exit(0)
	}

	var seedPath string
	if len(os.Args) >= 2 {
		seedPath = os.Args[1]
	}

	cfg, err := config.Load("linotype.toml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.DefaultOptions(cfg.LogPath))
	defer func() { _ = logging.Sync() }()

	model, err := New(cfg, seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
