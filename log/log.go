// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
)

// Logger is the logger handed out to packages.
type Logger = *slog.Logger

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.DateTime,
	})))
}

// Root returns the process-wide root logger.
func Root() Logger {
	return root.Load()
}

// SetRootHandler replaces the handler of the root logger.
// Loggers already obtained via WithContext keep the old handler.
func SetRootHandler(h slog.Handler) {
	root.Store(slog.New(h))
}

// WithContext returns a logger carrying the given key/value context.
func WithContext(args ...any) Logger {
	return Root().With(args...)
}

// DiscardHandler returns a no-op handler, useful in tests.
func DiscardHandler() slog.Handler {
	return discardHandler{}
}

type discardHandler struct{}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
