package server

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/tayfyvz/BlackJack/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Match  *MatchSettings `hcl:"match,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	ReadBuffer     int      `hcl:"read_buffer,optional"`
	WriteBuffer    int      `hcl:"write_buffer,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

// MatchSettings defines the rules every room plays by
type MatchSettings struct {
	WinThreshold int `hcl:"win_threshold,optional"`
	// RedealDelayMs is nil when unset; 0 redeals immediately.
	RedealDelayMs *int `hcl:"redeal_delay_ms,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			ReadBuffer:  1024,
			WriteBuffer: 1024,
		},
		Match: &MatchSettings{
			WinThreshold:  game.DefaultWinThreshold,
			RedealDelayMs: intPtr(int(game.DefaultRedealDelay / time.Millisecond)),
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	defaults := DefaultServerConfig()

	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}
	if c.Server.ReadBuffer == 0 {
		c.Server.ReadBuffer = defaults.Server.ReadBuffer
	}
	if c.Server.WriteBuffer == 0 {
		c.Server.WriteBuffer = defaults.Server.WriteBuffer
	}

	if c.Match == nil {
		c.Match = defaults.Match
		return
	}
	if c.Match.WinThreshold == 0 {
		c.Match.WinThreshold = defaults.Match.WinThreshold
	}
	if c.Match.RedealDelayMs == nil {
		c.Match.RedealDelayMs = defaults.Match.RedealDelayMs
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Server.ReadBuffer < 0 || c.Server.WriteBuffer < 0 {
		return fmt.Errorf("buffer sizes must not be negative")
	}

	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Host == "" {
			return fmt.Errorf("invalid allowed origin: %q", origin)
		}
	}

	if c.Match != nil {
		if c.Match.WinThreshold < 1 {
			return fmt.Errorf("match: win threshold must be positive")
		}
		if c.Match.RedealDelayMs != nil && *c.Match.RedealDelayMs < 0 {
			return fmt.Errorf("match: redeal delay must not be negative")
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// MatchConfig returns the rules passed to the coordinator.
func (c *ServerConfig) MatchConfig() game.Config {
	cfg := game.DefaultConfig()
	if c.Match == nil {
		return cfg
	}
	if c.Match.WinThreshold > 0 {
		cfg.WinThreshold = c.Match.WinThreshold
	}
	if c.Match.RedealDelayMs != nil && *c.Match.RedealDelayMs >= 0 {
		cfg.RedealDelay = time.Duration(*c.Match.RedealDelayMs) * time.Millisecond
	}
	return cfg
}

// CheckOrigin returns the upgrade origin check. With no allowed origins
// configured every origin is accepted.
func (c *ServerConfig) CheckOrigin() func(r *http.Request) bool {
	allowed := c.Server.AllowedOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

func intPtr(v int) *int { return &v }
