package logger

import "go.uber.org/zap"

type Field = zap.Field

// Field constructors used across the service.
var (
	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Bool     = zap.Bool
	Duration = zap.Duration
	ErrorF   = zap.Error
)
