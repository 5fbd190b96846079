package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fragmede/dashpanel/internal/api"
	"github.com/fragmede/dashpanel/internal/auth"
	"github.com/fragmede/dashpanel/internal/cache"
	"github.com/fragmede/dashpanel/internal/config"
	"github.com/fragmede/dashpanel/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		log.Fatalf("creating config dir: %v", err)
	}

	// The alt screen owns stdout, so diagnostics go to a file.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening cache: %v", err)
	}
	defer db.Close()

	session := auth.NewSession(cfg)
	client := api.NewClient(cfg, session.HTTPClient())

	app := ui.NewApp(cfg, client, db, session)
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.SetProgram(p)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
