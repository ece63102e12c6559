package logger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// Init replaces the process-wide root logger. It is safe to call more than once.
func Init(cfg Config) error {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	mu.Lock()
	root = l
	mu.Unlock()
	return nil
}

func Root() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

func Named(name string) *zap.SugaredLogger {
	return Root().Named(name).Sugar()
}

// MustNamed mirrors Named. It exists so call sites read the same as other
// Must* constructors at startup.
func MustNamed(name string) *zap.SugaredLogger {
	if name == "" {
		panic("logger: empty name")
	}
	return Named(name)
}

func Sync() {
	_ = Root().Sync()
}

type ctxKey struct{}

type ctxFields struct {
	mu     sync.Mutex
	fields []any
}

// WithFields returns a context whose log calls carry the given key/value pairs.
// Fields added later with AddFields on the same context are visible to every
// holder of that context.
func WithFields(ctx context.Context, kv ...any) context.Context {
	if f, ok := ctx.Value(ctxKey{}).(*ctxFields); ok {
		f.add(kv...)
		return ctx
	}
	f := &ctxFields{}
	f.add(kv...)
	return context.WithValue(ctx, ctxKey{}, f)
}

// AddFields appends fields to a context prepared with WithFields. It is a
// no-op otherwise.
func AddFields(ctx context.Context, kv ...any) {
	if f, ok := ctx.Value(ctxKey{}).(*ctxFields); ok {
		f.add(kv...)
	}
}

func (f *ctxFields) add(kv ...any) {
	f.mu.Lock()
	f.fields = append(f.fields, kv...)
	f.mu.Unlock()
}

func (f *ctxFields) snapshot() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.fields))
	copy(out, f.fields)
	return out
}

func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	if f, ok := ctx.Value(ctxKey{}).(*ctxFields); ok {
		return f.snapshot()
	}
	return nil
}

func withCtx(ctx context.Context) *zap.SugaredLogger {
	return Root().Sugar().With(Fields(ctx)...)
}

func Debugw(ctx context.Context, msg string, kv ...any) { withCtx(ctx).Debugw(msg, kv...) }
func Infow(ctx context.Context, msg string, kv ...any)  { withCtx(ctx).Infow(msg, kv...) }
func Warnw(ctx context.Context, msg string, kv ...any)  { withCtx(ctx).Warnw(msg, kv...) }
func Errorw(ctx context.Context, msg string, kv ...any) { withCtx(ctx).Errorw(msg, kv...) }
