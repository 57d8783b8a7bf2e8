package ipc

import (
	"bytes"
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commander/internal/eventbus"
	logx "commander/pkg/logx"
)

func TestFrameRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("hello")))
	assert.Equal(t, []byte{0x00, 0x05}, buf.Bytes()[:2])

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestWriteFrameTruncatesOversizedPayload(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, make([]byte, MaxPayload+10)))
	assert.Equal(t, []byte{0xFF, 0xFE}, buf.Bytes()[:2])
	assert.Equal(t, 2+MaxPayload-1, buf.Len())
}

func TestTruncatedFrameDecodesWholeUnits(t *testing.T) {
	t.Parallel()
	payload, err := EncodeText(strings.Repeat("é", MaxPayload))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, payload))
	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Zero(t, len(got)%2)

	text, err := DecodeText(got)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", len(got)/2), text)
}

func TestReadFrameShort(t *testing.T) {
	t.Parallel()
	_, err := ReadFrame(bytes.NewReader([]byte{0x00}))
	assert.ErrorIs(t, err, ErrShortFrame)

	_, err = ReadFrame(bytes.NewReader([]byte{0x00, 0x04, 'a'}))
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestEncodeCommandIsUTF16LE(t *testing.T) {
	t.Parallel()
	payload, err := EncodeCommand(Command{Name: "shortcut", Properties: map[string]string{"id": "3"}})
	require.NoError(t, err)
	// '{' followed by a zero high byte.
	assert.Equal(t, []byte{'{', 0x00, '"', 0x00}, payload[:4])

	cmd, err := DecodeCommand(payload)
	require.NoError(t, err)
	assert.Equal(t, "shortcut", cmd.Name)
	assert.Equal(t, map[string]string{"id": "3"}, cmd.Properties)
}

func TestDecodeCommandRejectsGarbage(t *testing.T) {
	t.Parallel()
	payload, err := EncodeText("not json")
	require.NoError(t, err)
	_, err = DecodeCommand(payload)
	assert.Error(t, err)

	payload, err = EncodeText(`{"Properties":{}}`)
	require.NoError(t, err)
	_, err = DecodeCommand(payload)
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

type collectingReporter struct {
	mu   sync.Mutex
	msgs []string
}

func (r *collectingReporter) ShowError(m string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
}

func (r *collectingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func startServer(t *testing.T, h Handler, rep *collectingReporter, opts ...ServerOption) (*Server, <-chan error) {
	t.Helper()
	endpoint := filepath.Join(t.TempDir(), "c.sock")
	s := NewServer(endpoint, h, rep, logx.Nop(), opts...)
	require.NoError(t, s.Listen())
	done := make(chan error, 1)
	go func() { done <- s.Serve(context.Background()) }()
	t.Cleanup(func() { _ = s.Close() })
	return s, done
}

func TestServerDispatchesCommands(t *testing.T) {
	t.Parallel()
	got := make(chan Command, 8)
	h := HandlerFunc(func(ctx context.Context, cmd Command) error {
		got <- cmd
		return nil
	})
	bus := eventbus.New(8)
	s, _ := startServer(t, h, &collectingReporter{}, WithBus(bus))

	ctx := context.Background()
	require.NoError(t, Send(ctx, s.Endpoint(), Command{Name: CommandFileAssociation, Properties: map[string]string{"filePath": "/tmp/a.log"}}))

	select {
	case cmd := <-got:
		assert.Equal(t, CommandFileAssociation, cmd.Name)
		assert.Equal(t, "/tmp/a.log", cmd.Properties["filePath"])
	case <-time.After(2 * time.Second):
		t.Fatal("command was not dispatched")
	}
	require.Eventually(t, func() bool { return len(bus.Recent(0)) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, eventbus.TypeCommandReceived, bus.Recent(1)[0].Type)
}

func TestServerSurvivesBadConnections(t *testing.T) {
	t.Parallel()
	got := make(chan Command, 8)
	h := HandlerFunc(func(ctx context.Context, cmd Command) error {
		got <- cmd
		if cmd.Name == "fail" {
			return errors.New("boom")
		}
		return nil
	})
	rep := &collectingReporter{}
	s, _ := startServer(t, h, rep)

	// Garbage payload.
	conn, err := net.Dial("unix", s.Endpoint())
	require.NoError(t, err)
	require.NoError(t, WriteFrame(conn, []byte{'x', 0x00, 'y', 0x00}))
	conn.Close()

	// Dropped before a full frame.
	conn, err = net.Dial("unix", s.Endpoint())
	require.NoError(t, err)
	_, _ = conn.Write([]byte{0x00})
	conn.Close()

	ctx := context.Background()
	require.NoError(t, Send(ctx, s.Endpoint(), Command{Name: "fail"}))
	require.NoError(t, Send(ctx, s.Endpoint(), Command{Name: "ok"}))

	names := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case cmd := <-got:
			names[cmd.Name] = true
		case <-time.After(2 * time.Second):
			t.Fatal("server stopped dispatching")
		}
	}
	assert.True(t, names["fail"] && names["ok"])
	require.Eventually(t, func() bool { return rep.count() == 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestShutdownMessageStopsServer(t *testing.T) {
	t.Parallel()
	s, done := startServer(t, nil, &collectingReporter{})
	require.NoError(t, SendShutdown(context.Background(), s.Endpoint()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	select {
	case <-s.Stopped():
	default:
		t.Fatal("Stopped channel not closed")
	}
}

func TestSecondListenerFailsFast(t *testing.T) {
	t.Parallel()
	s, _ := startServer(t, nil, &collectingReporter{})
	other := NewServer(s.Endpoint(), nil, nil, logx.Nop())
	err := other.Listen()
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestSendWithoutListener(t *testing.T) {
	t.Parallel()
	err := Send(context.Background(), filepath.Join(t.TempDir(), "none.sock"), Command{Name: "x"})
	assert.Error(t, err)
}
