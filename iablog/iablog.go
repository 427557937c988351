/*
NAME
  iablog.go

DESCRIPTION
  iablog.go provides the structured logging facade used by the renderer
  to surface non-fatal Warning diagnostics (NoLFE,
  EmptyZone, and similar) and operational error context, without
  scattering *zap.Logger construction through the core packages.

  Log files rotate through gopkg.in/natefinch/lumberjack.v2, with
  go.uber.org/zap as the structured logger on top.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package iablog is the structured-logging facade used by the renderer.
package iablog

import (
	"gopkg.in/natefinch/lumberjack.v2"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Warning identifies a non-fatal, out-of-band diagnostic raised during
// rendering. Warnings never abort a frame; they surface through the log
// sink only.
type Warning string

// Warning kinds.
const (
	WarnNoLFE           Warning = "NoLFE"
	WarnEmptyZone       Warning = "EmptyZone"
	WarnSkippedElement  Warning = "SkippedUnknownElement"
	WarnZoneUnsupported Warning = "ZoneDefinitionSkipped"
)

// Logger wraps a *zap.Logger configured for this module's use.
type Logger struct {
	z *zap.Logger
}

// Discard is a Logger that drops everything; the zero value of Logger is
// not usable directly because a nil *zap.Logger panics, so callers that
// don't want logging should use this instead of the zero value.
var Discard = &Logger{z: zap.NewNop()}

// New returns a Logger that writes structured JSON lines to path, rotated
// by lumberjack once it exceeds maxSizeMB, keeping maxBackups old files for
// maxAgeDays.
func New(path string, maxSizeMB, maxBackups, maxAgeDays int) *Logger {
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	})
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, sink, zap.InfoLevel)
	return &Logger{z: zap.New(core)}
}

// NewFromZap wraps an existing zap logger, letting callers supply their
// own core (tests use this with an observer core).
func NewFromZap(z *zap.Logger) *Logger {
	return &Logger{z: z}
}

// Warn logs a non-fatal rendering diagnostic.
func (l *Logger) Warn(w Warning, fields ...zap.Field) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Warn(string(w), fields...)
}

// Error logs a fatal per-element or per-frame failure with its error
// taxonomy context.
func (l *Logger) Error(msg string, err error, fields ...zap.Field) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Error(msg, append(fields, zap.Error(err))...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.z == nil {
		return nil
	}
	return l.z.Sync()
}
