package action

import (
	"context"
	"sync"
	"time"

	logx "commander/pkg/logx"
)

// Result is what a Runner captured from one run.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Took     time.Duration
}

// Runner executes a single action. Implementations need not be safe for
// concurrent use; the Executor serializes calls.
type Runner interface {
	Run(ctx context.Context, a Action, args []string) (Result, error)
}

// Executor is the single execution point for every stimulus. All runs are
// serialized behind one lock, so no two actions ever overlap.
type Executor struct {
	lock   sync.Locker
	runner Runner
	log    logx.Logger

	defaultTimeout time.Duration
}

type Option func(*Executor)

// WithLock injects the serialization primitive. Defaults to a private mutex.
func WithLock(l sync.Locker) Option {
	return func(e *Executor) {
		if l != nil {
			e.lock = l
		}
	}
}

func WithLogger(log logx.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// WithDefaultTimeout bounds actions that don't set their own timeout.
// Zero disables the bound.
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Executor) { e.defaultTimeout = d }
}

func NewExecutor(r Runner, opts ...Option) *Executor {
	e := &Executor{
		lock:   &sync.Mutex{},
		runner: r,
		log:    logx.Nop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute runs a with args and discards its output.
func (e *Executor) Execute(ctx context.Context, a Action, args ...any) error {
	_, err := e.run(ctx, a, args)
	return err
}

// Evaluate runs a with args and returns its parsed stdout.
func (e *Executor) Evaluate(ctx context.Context, a Action, args ...any) (any, error) {
	res, err := e.run(ctx, a, args)
	if err != nil {
		return nil, err
	}
	return ParseOutput(res.Stdout), nil
}

func (e *Executor) run(ctx context.Context, a Action, args []any) (Result, error) {
	if a.IsZero() {
		return Result{}, ErrEmptyAction
	}
	if e.runner == nil {
		return Result{}, ErrNoRunner
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	// Canceled while queued behind another action.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := e.runner.Run(ctx, a, FormatArgs(args))
	took := time.Since(start)
	if err != nil {
		e.log.Debug("action failed", logx.String("action", a.Label()), logx.Duration("took", took), logx.Err(err))
		return res, err
	}
	e.log.Debug("action finished", logx.String("action", a.Label()), logx.Duration("took", took))
	return res, nil
}
