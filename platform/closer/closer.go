package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type Logger interface {
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
}

type namedFunc struct {
	name string
	fn   func(ctx context.Context) error
}

type closer struct {
	mu     sync.Mutex
	once   sync.Once
	funcs  []namedFunc
	logger Logger
	err    error
}

var globalCloser = New()

func New() *closer {
	return &closer{logger: nopLogger{}}
}

func SetLogger(l Logger) { globalCloser.SetLogger(l) }

func Add(fn func(ctx context.Context) error) { globalCloser.AddNamed("", fn) }

func AddNamed(name string, fn func(ctx context.Context) error) {
	globalCloser.AddNamed(name, fn)
}

func CloseAll(ctx context.Context) error { return globalCloser.CloseAll(ctx) }

func (c *closer) SetLogger(l Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

func (c *closer) AddNamed(name string, fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = append(c.funcs, namedFunc{name: name, fn: fn})
}

// CloseAll runs registered funcs in reverse order once. Later calls return the first result.
func (c *closer) CloseAll(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.funcs
		c.funcs = nil
		log := c.logger
		c.mu.Unlock()

		var errs []error
		for i := len(funcs) - 1; i >= 0; i-- {
			f := funcs[i]
			if ctx.Err() != nil {
				errs = append(errs, fmt.Errorf("closer %q: %w", f.name, ctx.Err()))
				continue
			}

			if err := f.fn(ctx); err != nil {
				log.Error(ctx, "close failed", zap.String("name", f.name), zap.Error(err))
				errs = append(errs, fmt.Errorf("closer %q: %w", f.name, err))
				continue
			}
			log.Info(ctx, "closed", zap.String("name", f.name))
		}

		c.err = errors.Join(errs...)
	})

	return c.err
}

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...zap.Field)  {}
func (nopLogger) Error(context.Context, string, ...zap.Field) {}
