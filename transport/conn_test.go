package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestConn_ConnectAndSendReceive(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c := NewConn(ConnConfig{URL: wsURL(srv)})
	ctx := context.Background()

	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	payload, err := json.Marshal(map[string]string{"hello": "world"})
	require.NoError(t, err)
	require.NoError(t, c.SendRaw(payload))

	data, err := c.Receive(ctx)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "world", got["hello"])
}

func TestConn_ConnectWithRetry_Success(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c := NewConn(ConnConfig{URL: wsURL(srv)})
	require.NoError(t, c.ConnectWithRetry(context.Background(), 3, 10*time.Millisecond, 50*time.Millisecond))
	defer c.Close()
}

func TestConn_ConnectWithRetry_Failure(t *testing.T) {
	c := NewConn(ConnConfig{URL: "ws://127.0.0.1:1"})

	err := c.ConnectWithRetry(context.Background(), 2, 10*time.Millisecond, 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect after 2 attempts")
}

func TestConn_ConnectWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConn(ConnConfig{URL: "ws://127.0.0.1:1"})

	err := c.ConnectWithRetry(ctx, 5, 10*time.Millisecond, 50*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConn_Close_Idempotent(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c := NewConn(ConnConfig{URL: wsURL(srv)})
	require.NoError(t, c.Connect(context.Background()))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
}

func TestConn_Close_WithoutConnect(t *testing.T) {
	c := NewConn(ConnConfig{URL: "ws://127.0.0.1:1"})
	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
}

func TestConn_SendRawOnClosed(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c := NewConn(ConnConfig{URL: wsURL(srv)})
	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close())

	err := c.SendRaw([]byte("test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestConn_ReceiveWithoutConnect(t *testing.T) {
	c := NewConn(ConnConfig{URL: "ws://127.0.0.1:1"})
	_, err := c.Receive(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestConn_ReceiveContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		select {}
	}))
	defer srv.Close()

	c := NewConn(ConnConfig{URL: wsURL(srv)})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Receive(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConn_ConnectWhenClosed(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c := NewConn(ConnConfig{URL: wsURL(srv)})
	require.NoError(t, c.Close())

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	max := 500 * time.Millisecond

	for i := 0; i < 100; i++ {
		d := calculateBackoff(base, max)
		assert.LessOrEqual(t, d, max)
		assert.GreaterOrEqual(t, d, time.Duration(0))
	}
}

func TestCalculateBackoff_CapAtMax(t *testing.T) {
	d := calculateBackoff(10*time.Second, 1*time.Second)
	assert.LessOrEqual(t, d, 1*time.Second)
}

func TestConnConfig_Defaults(t *testing.T) {
	cfg := ConnConfig{}
	cfg.defaults()

	assert.Equal(t, time.Duration(DefaultDialTimeout), cfg.DialTimeout)
	assert.Equal(t, time.Duration(DefaultWriteWait), cfg.WriteWait)
	assert.Equal(t, int64(DefaultMaxMessageSize), cfg.MaxMessageSize)
	assert.Equal(t, time.Duration(DefaultCloseGracePeriod), cfg.CloseGracePeriod)
}

func TestConnConfig_CustomValues(t *testing.T) {
	cfg := ConnConfig{
		DialTimeout:      5 * time.Second,
		WriteWait:        3 * time.Second,
		MaxMessageSize:   1024,
		CloseGracePeriod: 2 * time.Second,
	}
	cfg.defaults()

	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.WriteWait)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
}
