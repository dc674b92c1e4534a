package client

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"CarnageVision/cliente/internal/debugnet"
	"CarnageVision/shared/proto/cvnet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startDebugServer(t *testing.T) *debugnet.Server {
	t.Helper()
	s := debugnet.NewServer()
	s.PublishInterval = 10 * time.Millisecond
	require.NoError(t, s.Start(context.Background(), "127.0.0.1:0"))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDebugClientRoundTrip(t *testing.T) {
	s := startDebugServer(t)

	c := NewDebugClient("ws://" + s.Addr() + debugnet.Path)
	var status atomic.Value
	var pongs, frames atomic.Int32
	c.OnStatus = func(msg string) { status.Store(msg) }
	c.OnPong = func() { pongs.Add(1) }
	c.OnTelemetry = func(*cvnet.Telemetry) { frames.Add(1) }

	require.NoError(t, c.Connect())
	defer c.Close()
	assert.True(t, c.IsConnected())

	require.NoError(t, c.SendCommand(cvnet.Command{Kind: cvnet.CmdSetFootprints, Enabled: true}))
	require.NoError(t, c.Ping())

	require.Eventually(t, func() bool { return pongs.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "CarnageVision debug", status.Load())

	cmds := s.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, cvnet.CmdSetFootprints, cmds[0].Kind)

	s.PushTelemetry(cvnet.Telemetry{Frame: 1})
	require.Eventually(t, func() bool { return frames.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestDebugClientDisconnect(t *testing.T) {
	s := startDebugServer(t)
	c := NewDebugClient("ws://" + s.Addr() + debugnet.Path)
	require.NoError(t, c.Connect())

	require.NoError(t, s.Close())
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("cliente não percebeu o fechamento")
	}
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.SendCommand(cvnet.Command{Kind: cvnet.CmdRequestFlags}), ErrNotConnected)
}

func TestDebugClientRetriesExhausted(t *testing.T) {
	c := NewDebugClient("ws://127.0.0.1:1/debug")
	c.MaxRetries = 2
	c.RetryDelay = time.Millisecond
	assert.Error(t, c.Connect())
	assert.False(t, c.IsConnected())
}
