package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayfyvz/BlackJack/internal/server"
)

func TestServerOverrides(t *testing.T) {
	threshold, delay := 3, 0
	cmd := ServerCmd{Addr: "0.0.0.0:9090", WinThreshold: &threshold, RedealDelayMs: &delay}

	cfg := server.DefaultServerConfig()
	require.NoError(t, cmd.applyOverrides(cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddress())
	match := cfg.MatchConfig()
	assert.Equal(t, 3, match.WinThreshold)
	assert.Zero(t, match.RedealDelay)
}

func TestServerOverridesRejectBadAddress(t *testing.T) {
	cfg := server.DefaultServerConfig()

	assert.Error(t, (&ServerCmd{Addr: "nope"}).applyOverrides(cfg))
	assert.Error(t, (&ServerCmd{Addr: "localhost:http"}).applyOverrides(cfg))
}
