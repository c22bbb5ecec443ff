package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/tayfyvz/BlackJack/cmd/blackjack/shared"
	"github.com/tayfyvz/BlackJack/internal/randutil"
	"github.com/tayfyvz/BlackJack/internal/server"
)

// ServerCmd runs the match server. Flags override values from the config file.
type ServerCmd struct {
	Config        string `kong:"default='server.hcl',env='BLACKJACK_CONFIG',help='Path to HCL config file'"`
	Addr          string `kong:"env='BLACKJACK_ADDR',help='Listen address (host:port)'"`
	Seed          *int64 `kong:"env='BLACKJACK_SEED',help='Deterministic RNG seed for deals (optional)'"`
	WinThreshold  *int   `kong:"env='BLACKJACK_WIN_THRESHOLD',help='Round wins needed to take a match'"`
	RedealDelayMs *int   `kong:"env='BLACKJACK_REDEAL_DELAY_MS',help='Pause between rounds in milliseconds'"`
}

func (c *ServerCmd) Run(globals *Globals) error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := c.applyOverrides(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := shared.SetupLogger(os.Stderr, shared.ParseLevel(globals.Debug, cfg.Server.LogLevel), globals.LogFormat)

	rng, seed := randutil.FromOptionalSeed(c.Seed)
	logger.Info("Seeded deck shuffles", "seed", seed, "deterministic", c.Seed != nil)

	s := server.NewServer(logger, rng, server.WithConfig(cfg))

	match := cfg.MatchConfig()
	logger.Info("Starting Blackjack server",
		"address", cfg.GetServerAddress(),
		"win_threshold", match.WinThreshold,
		"redeal_delay", match.RedealDelay,
		"allowed_origins", len(cfg.Server.AllowedOrigins))

	ctx := shared.SetupSignalHandler(logger)
	return s.Run(ctx)
}

func (c *ServerCmd) applyOverrides(cfg *server.ServerConfig) error {
	if c.Addr != "" {
		host, portStr, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", c.Addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid port in %q: %w", c.Addr, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}

	if c.WinThreshold != nil {
		cfg.Match.WinThreshold = *c.WinThreshold
	}
	if c.RedealDelayMs != nil {
		delay := *c.RedealDelayMs
		cfg.Match.RedealDelayMs = &delay
	}
	return nil
}
