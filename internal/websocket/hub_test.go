package websocket

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/internal/operations"
	"tabclean/internal/shared/testutil"
	"tabclean/pkg/contracts/events"
)

// fakeConn is a Connection that never delivers inbound frames
type fakeConn struct {
	closed chan struct{}
}

func newFakeConn() *fakeConn { return &fakeConn{closed: make(chan struct{})} }

func (c *fakeConn) WriteMessage(int, []byte) error { return nil }
func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}
func (c *fakeConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return nil
}
func (c *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (c *fakeConn) SetReadLimit(int64) {}
func (c *fakeConn) SetPongHandler(func(string) error) {}
func (c *fakeConn) RemoteAddr() string { return "127.0.0.1:1234" }

type envelope struct {
	Type events.MessageType `json:"type"`
	Data json.RawMessage    `json:"data"`
}

func receive(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return envelope{}
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func TestHubDeliversEvents(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, newFakeConn(), "trace-1", nil)
	hub.Register(client)

	assert.Equal(t, events.TypeConnection, receive(t, client).Type)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Log("File loaded successfully.")
	env := receive(t, client)
	assert.Equal(t, events.TypeLog, env.Type)
	var logData events.LogData
	require.NoError(t, json.Unmarshal(env.Data, &logData))
	assert.Equal(t, "File loaded successfully.", logData.Message)

	hub.ReportProgress(50, events.ChannelSplit)
	env = receive(t, client)
	assert.Equal(t, events.TypeProgress, env.Type)
	var progress events.ProgressData
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Equal(t, events.ProgressData{Percent: 50, Channel: events.ChannelSplit}, progress)

	hub.JobChanged(operations.JobSnapshot{
		ID:     "job-1",
		Kind:   "split_rows",
		Status: operations.JobStatusFailed,
		Err:    errors.New("disk full"),
	})
	env = receive(t, client)
	assert.Equal(t, events.TypeTask, env.Type)
	var task events.TaskData
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, events.TaskData{ID: "job-1", Kind: "split_rows", Status: "failed", Error: "disk full"}, task)
}

func TestHubPublishNeverBlocks(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger) // loop not running, nothing drains the buffer

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.ReportProgress(i%101, events.ChannelSplit)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
	assert.Equal(t, int64(10), hub.GetHubMetrics()["messages_dropped"])
}

func TestHubUnregister(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, newFakeConn(), "", nil)
	hub.Register(client)
	receive(t, client)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open)
}

func TestHandlerStreamsToBrowser(t *testing.T) {
	hub := startHub(t)
	server := httptest.NewServer(NewHandler(hub, nil, nil))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() envelope {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var env envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	}

	assert.Equal(t, events.TypeConnection, read().Type)
	hub.Log("Saved: out/North.csv")
	assert.Equal(t, events.TypeLog, read().Type)
}

func TestHandlerRejectsUnknownOrigin(t *testing.T) {
	hub := startHub(t)
	server := httptest.NewServer(NewHandler(hub, []string{"http://allowed.local"}, nil))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.local"}}
	_, resp, err := gorilla.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
