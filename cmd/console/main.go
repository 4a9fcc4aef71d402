package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/cell-commander/internal/config"
	"github.com/jwebster45206/cell-commander/internal/logger"
	"github.com/jwebster45206/cell-commander/pkg/engine"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

func main() {
	logFile := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		logOut = f
	}
	log := logger.SetupTo(logOut, cfg)

	cat, err := story.LoadFile(cfg.ScriptFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load story: %v\n", err)
		os.Exit(1)
	}
	for _, problem := range cat.Validate() {
		log.Warn("Story content problem", "problem", problem)
	}

	e := engine.New(cat, log).
		WithTimings(engine.DefaultTimings().Scaled(cfg.TimeScale))
	defer e.Close()

	p := tea.NewProgram(NewConsoleUI(e),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	e.WithNotifier(engine.NotifierFunc(func(sig engine.Signal) {
		p.Send(signalMsg(sig))
	}))

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
