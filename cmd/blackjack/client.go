package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tayfyvz/BlackJack/cmd/blackjack/shared"
	"github.com/tayfyvz/BlackJack/internal/client"
	"github.com/tayfyvz/BlackJack/internal/server"
	"github.com/tayfyvz/BlackJack/internal/tui"
)

// ClientCmd connects an interactive terminal player
type ClientCmd struct {
	Config  string `kong:"default='client.hcl',help='Path to HCL config file'"`
	URL     string `kong:"env='BLACKJACK_URL',help='Server URL (http, https, ws or wss)'"`
	Name    string `kong:"env='BLACKJACK_NAME',help='Display name'"`
	Create  bool   `kong:"help='Create a private room and print its code'"`
	Join    string `kong:"help='Join the private room with this code'"`
	Private bool   `kong:"help='Connect without entering matchmaking'"`
	NoColor bool   `kong:"help='Disable colors'"`
}

func (c *ClientCmd) Run(globals *Globals) error {
	if c.Create && c.Join != "" {
		return fmt.Errorf("--create and --join are mutually exclusive")
	}

	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.UI.NoColor {
		tui.DisableColor()
	}

	// The terminal belongs to the TUI, so logs go to a file
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := shared.SetupLogger(logFile, shared.ParseLevel(globals.Debug, cfg.UI.LogLevel), globals.LogFormat)
	ctx := shared.SetupSignalHandler(logger)

	bjClient := client.NewClient(cfg.GetServerURL(), logger)
	model := tui.NewTUIModel(bjClient, cfg.GetPlayerName(), logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tui.Attach(bjClient, program)

	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	defer cancel()

	if err := server.WaitForHealthy(connectCtx, cfg.GetServerURL()); err != nil {
		return fmt.Errorf("server %s not healthy: %w", cfg.GetServerURL(), err)
	}

	private := cfg.Player.Private || c.Create || c.Join != ""
	if err := bjClient.Connect(connectCtx, private); err != nil {
		return err
	}
	defer func() { _ = bjClient.Disconnect() }()

	switch {
	case c.Create:
		err = bjClient.CreateRoom()
	case c.Join != "":
		err = bjClient.JoinRoom(strings.TrimSpace(c.Join))
	}
	if err != nil {
		return err
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (c *ClientCmd) applyOverrides(cfg *client.ClientConfig) {
	if url := strings.TrimSpace(c.URL); url != "" {
		cfg.Server.URL = url
	}
	if name := strings.TrimSpace(c.Name); name != "" {
		cfg.Player.Name = name
	}
	if c.Private {
		cfg.Player.Private = true
	}
	if c.NoColor {
		cfg.UI.NoColor = true
	}
}
