package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"commander/internal/eventbus"
	"commander/internal/lock"
	"commander/internal/report"
	logx "commander/pkg/logx"
)

// Slots is the number of concurrent accept loops.
const Slots = 4

const defaultReadTimeout = 5 * time.Second

var (
	ErrAlreadyRunning = errors.New("ipc: another instance owns the endpoint")
	ErrNotListening   = errors.New("ipc: server is not listening")
)

// Handler receives every decoded command.
type Handler interface {
	Dispatch(ctx context.Context, cmd Command) error
}

type HandlerFunc func(ctx context.Context, cmd Command) error

func (f HandlerFunc) Dispatch(ctx context.Context, cmd Command) error { return f(ctx, cmd) }

// Server accepts one framed message per connection on a unix socket.
type Server struct {
	endpoint    string
	handler     Handler
	reporter    report.Reporter
	log         logx.Logger
	bus         eventbus.Bus
	readTimeout time.Duration

	mu       sync.Mutex
	ln       net.Listener
	pid      *lock.PIDLock
	stopOnce sync.Once
	stopped  chan struct{}
}

type ServerOption func(*Server)

func WithBus(b eventbus.Bus) ServerOption { return func(s *Server) { s.bus = b } }

func WithReadTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

func NewServer(endpoint string, h Handler, reporter report.Reporter, log logx.Logger, opts ...ServerOption) *Server {
	if endpoint == "" {
		endpoint = DefaultEndpoint()
	}
	if reporter == nil {
		reporter = report.Discard
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Server{
		endpoint:    endpoint,
		handler:     h,
		reporter:    reporter,
		log:         log.With(logx.String("comp", "ipc")),
		readTimeout: defaultReadTimeout,
		stopped:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Endpoint() string { return s.endpoint }

// Listen binds the endpoint. A second instance fails fast with
// ErrAlreadyRunning; a stale socket left by a dead instance is removed.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.endpoint), 0o700); err != nil {
		return fmt.Errorf("ipc: create endpoint dir: %w", err)
	}

	pid, err := lock.Acquire(LockPath(s.endpoint))
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return fmt.Errorf("%w: %v", ErrAlreadyRunning, err)
		}
		return fmt.Errorf("ipc: %w", err)
	}
	if err := os.Remove(s.endpoint); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = pid.Release()
		return fmt.Errorf("ipc: remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.endpoint)
	if err != nil {
		_ = pid.Release()
		return fmt.Errorf("ipc: listen %s: %w", s.endpoint, err)
	}
	if err := os.Chmod(s.endpoint, 0o600); err != nil {
		s.log.Warn("chmod socket failed", logx.String("path", s.endpoint), logx.Err(err))
	}
	s.ln = ln
	s.pid = pid
	s.log.Info("listening", logx.String("endpoint", s.endpoint))
	return nil
}

// Serve runs Slots accept loops until ctx is canceled, Close is called,
// or a shutdown message arrives. It returns nil in all three cases.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.stopped:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < Slots; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			s.acceptLoop(ctx, ln, slot)
		}(i)
	}
	wg.Wait()
	return nil
}

// Stopped is closed once the server stops accepting.
func (s *Server) Stopped() <-chan struct{} { return s.stopped }

// Close stops every accept loop and removes the socket. Safe to call twice.
func (s *Server) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopped)
		s.mu.Lock()
		ln, pid := s.ln, s.pid
		s.ln, s.pid = nil, nil
		s.mu.Unlock()
		if ln != nil {
			err = ln.Close()
		}
		if pid != nil {
			_ = pid.Release()
		}
	})
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, slot int) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopped:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.reporter.ShowError(fmt.Sprintf("ipc accept failed: %v", err))
			select {
			case <-s.stopped:
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if s.handleConn(ctx, conn, slot) {
			s.log.Info("shutdown requested")
			s.Close()
			return
		}
	}
}

// handleConn reads a single frame. It reports true for the shutdown message.
func (s *Server) handleConn(ctx context.Context, conn net.Conn, slot int) (shutdown bool) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("connection handler panicked", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
			s.reporter.ShowError(fmt.Sprintf("ipc: %v", r))
			shutdown = false
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	payload, err := ReadFrame(conn)
	if err != nil {
		s.reporter.ShowError(fmt.Sprintf("ipc read failed: %v", err))
		return false
	}
	text, err := DecodeText(payload)
	if err != nil {
		s.reporter.ShowError(fmt.Sprintf("ipc decode failed: %v", err))
		return false
	}
	if text == ShutdownMessage {
		return true
	}

	cmd, err := parseCommand(text)
	if err != nil {
		s.reporter.ShowError(fmt.Sprintf("ipc: malformed command: %v", err))
		return false
	}
	s.log.Debug("command received", logx.Int("slot", slot), logx.String("name", cmd.Name))
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: eventbus.TypeCommandReceived, Data: cmd})
	}
	if s.handler == nil {
		return false
	}
	if err := s.handler.Dispatch(ctx, cmd); err != nil {
		s.reporter.ShowError(fmt.Sprintf("ipc: %s: %v", cmd.Name, err))
	}
	return false
}
