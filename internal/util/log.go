package util

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

func init() {
	pterm.DefaultLogger.ShowTime = true
	pterm.DefaultLogger.TimeFormat = "02 Jan 15:04:05"
	pterm.DefaultLogger.MaxWidth = 1000
}

// Leveled logging helpers over pterm's default logger. SetLogOutput
// redirects every level at once.

func LogDebug(format string, args ...any) {
	pterm.DefaultLogger.Debug(fmt.Sprintf(format, args...))
}

func LogInfo(format string, args ...any) {
	pterm.DefaultLogger.Info(fmt.Sprintf(format, args...))
}

func LogWarning(format string, args ...any) {
	pterm.DefaultLogger.Warn(fmt.Sprintf(format, args...))
}

func LogError(format string, args ...any) {
	pterm.DefaultLogger.Error(fmt.Sprintf(format, args...))
}

// ConnLog prefixes a per-connection line with the connection's [%08x] tag.
func ConnLog(id uint32, level pterm.LogLevel, format string, args ...any) {
	msg := fmt.Sprintf("[%08x] %s", id, fmt.Sprintf(format, args...))
	switch level {
	case pterm.LogLevelDebug:
		pterm.DefaultLogger.Debug(msg)
	case pterm.LogLevelWarn:
		pterm.DefaultLogger.Warn(msg)
	case pterm.LogLevelError:
		pterm.DefaultLogger.Error(msg)
	default:
		pterm.DefaultLogger.Info(msg)
	}
}

// EnableDebug turns on debug lines (the -debug flag).
func EnableDebug() {
	pterm.DefaultLogger.Level = pterm.LogLevelDebug
}

// SetLogOutput redirects all log lines to w.
func SetLogOutput(w io.Writer) {
	pterm.DefaultLogger.Writer = w
}
