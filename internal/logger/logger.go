// Package logger wraps zap with key-value methods and hashes learner
// identifiers before they reach log output.
package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Mode is "production" (JSON) or "development" (console).
	Mode string
	// Level is a zap level name; empty means info.
	Level string
	// HashIDs replaces user and session identifiers with salted digests.
	HashIDs bool
	// HashSalt is mixed into identifier digests.
	HashSalt string
}

// Logger is a sugared zap logger.
type Logger struct {
	sugar    *zap.SugaredLogger
	hashIDs  bool
	hashSalt string
}

// New builds a Logger writing to stderr.
func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{sugar: z.Sugar(), hashIDs: opts.HashIDs, hashSalt: opts.HashSalt}, nil
}

// NewZap wraps an existing zap logger. Identifier hashing is enabled.
func NewZap(z *zap.Logger) *Logger {
	return &Logger{sugar: z.Sugar(), hashIDs: true}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, l.sanitize(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, l.sanitize(keysAndValues)...)
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{
		sugar:    l.sugar.With(l.sanitize(keysAndValues)...),
		hashIDs:  l.hashIDs,
		hashSalt: l.hashSalt,
	}
}

// Desugar exposes the underlying zap logger for middleware.
func (l *Logger) Desugar() *zap.Logger {
	return l.sugar.Desugar()
}

func (l *Logger) sanitize(kv []any) []any {
	if !l.hashIDs || len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key, _ := kv[i].(string)
		val := kv[i+1]
		if isIDKey(key) {
			val = l.HashID(fmt.Sprint(val))
		}
		out = append(out, kv[i], val)
	}
	return out
}

func isIDKey(key string) bool {
	key = strings.ToLower(key)
	return strings.HasSuffix(key, "user_id") || strings.HasSuffix(key, "user")
}

// HashID returns a short salted digest of id, or "" for an empty id.
func (l *Logger) HashID(id string) string {
	if id == "" {
		return ""
	}
	h := sha256.New()
	h.Write([]byte(l.hashSalt))
	h.Write([]byte(id))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}
