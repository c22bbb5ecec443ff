package server

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/tayfyvz/BlackJack/internal/randutil"
	"github.com/tayfyvz/BlackJack/internal/sessionid"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.New(io.Discard)
}

type testServer struct {
	*Server
	http  *httptest.Server
	clock *quartz.Mock
}

func newTestServer(t *testing.T, opts ...ServerOption) *testServer {
	t.Helper()

	clock := quartz.NewMock(t)
	opts = append([]ServerOption{WithClock(clock)}, opts...)
	srv := NewServer(testLogger(), randutil.New(42), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, WaitForHealthy(ctx, ts.URL))

	return &testServer{Server: srv, http: ts, clock: clock}
}

func (ts *testServer) dial(t *testing.T, private bool) *websocket.Conn {
	t.Helper()

	u, err := WebSocketURL(ts.http.URL, private)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// dialWelcomed connects and consumes the welcome message.
func (ts *testServer) dialWelcomed(t *testing.T, private bool) (*websocket.Conn, string) {
	t.Helper()

	conn := ts.dial(t, private)
	var welcome WelcomeData
	readUntil(t, conn, MessageTypeWelcome, &welcome)
	require.NoError(t, sessionid.Validate(welcome.ParticipantID))
	return conn, welcome.ParticipantID
}

func (ts *testServer) advance(t *testing.T, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts.clock.Advance(d).MustWait(ctx)
}

func readMessage(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

// readUntil skips messages until one of type typ arrives and decodes it into v.
func readUntil(t *testing.T, conn *websocket.Conn, typ MessageType, v any) *Message {
	t.Helper()

	for {
		msg := readMessage(t, conn)
		if msg.Type != typ {
			continue
		}
		if v != nil {
			require.NoError(t, msg.Decode(v))
		}
		return msg
	}
}

func send(t *testing.T, conn *websocket.Conn, typ MessageType, data any) {
	t.Helper()

	msg, err := NewMessage(typ, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}
