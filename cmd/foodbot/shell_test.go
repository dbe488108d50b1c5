package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"foodbot/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Bot:     config.BotConfig{Name: "foodbot"},
		Brain:   config.BrainConfig{Driver: config.BrainFile, File: config.FileBrainConfig{Dir: t.TempDir()}},
		Events:  config.EventsConfig{Driver: config.EventsNone},
		Command: config.CommandConfig{Timeout: time.Second},
	}
}

func TestShell_Session(t *testing.T) {
	cfg := testConfig(t)
	a, err := wire(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.close()

	in := strings.NewReader(strings.Join([]string{
		`food start "lunch" from Sub Shop`,
		`food for "lunch" get me BLT`,
		`food check "lunch"`,
		`hello`,
	}, "\n"))
	var out bytes.Buffer
	require.NoError(t, shell(context.Background(), a, "alice", in, &out))

	got := out.String()
	assert.Contains(t, got, `I'm taking orders for "lunch"`)
	assert.Contains(t, got, "alice: I got your order!")
	assert.Contains(t, got, "alice: BLT")
	assert.Contains(t, got, "(no reply)")

	// The registry survives a restart through the file brain.
	b, err := wire(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer b.close()
	assert.True(t, b.mgr.HasOrder("lunch"))
}

func TestWire_UnknownBrain(t *testing.T) {
	cfg := testConfig(t)
	cfg.Brain.Driver = "s3"
	_, err := wire(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
