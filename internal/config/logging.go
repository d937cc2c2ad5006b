package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger は LOG_LEVEL と LOG_FORMAT に従った slog.Logger を作ります。
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetupLogger は既定のロガーを差し替えます。起動時に1回だけ呼ぶのだ。
func SetupLogger(w io.Writer, cfg *Config) {
	slog.SetDefault(NewLogger(w, cfg.LogLevel, cfg.LogFormat))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
