// internal/logging/logging.go
//
// Package logging 依設定建立整個行程共用的 slog.Logger。
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New 回傳寫入 w 的 logger。format 為 "json" 或 "text"（預設）；
// level 為 debug、info、warn、error 之一（預設 info）。
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel 將等級名稱轉為 slog.Level；無法辨識時為 Info。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard 回傳丟棄所有輸出的 logger，測試用。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
