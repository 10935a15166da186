// Package logger builds slog loggers with a small option surface: level,
// json/text format, output writer, and static attributes. The webhook router
// and migration runner take a *slog.Logger; the other packages do not log.
package logger
