package ports

import (
	"context"
	"log/slog"
	"time"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type StructuredLogger struct {
	logger    *slog.Logger
	component string
	version   string
	nodeID    string
	baseAttrs []slog.Attr
}

func NewStructuredLogger(logger *slog.Logger, component, version, nodeID string) *StructuredLogger {
	if logger == nil {
		logger = slog.Default()
	}

	baseAttrs := []slog.Attr{
		slog.String(FieldComponent, component),
		slog.String(FieldVersion, version),
		slog.String(FieldNodeID, nodeID),
	}

	return &StructuredLogger{
		logger:    logger,
		component: component,
		version:   version,
		nodeID:    nodeID,
		baseAttrs: baseAttrs,
	}
}

func (sl *StructuredLogger) WithOperation(operation, requestID string) *OperationLogger {
	return &OperationLogger{
		logger:    sl,
		operation: operation,
		requestID: requestID,
		startTime: time.Now(),
	}
}

func (sl *StructuredLogger) Debug(msg string, args ...interface{}) {
	sl.log(slog.LevelDebug, msg, args...)
}

func (sl *StructuredLogger) Info(msg string, args ...interface{}) {
	sl.log(slog.LevelInfo, msg, args...)
}

func (sl *StructuredLogger) Warn(msg string, args ...interface{}) {
	sl.log(slog.LevelWarn, msg, args...)
}

func (sl *StructuredLogger) Error(msg string, args ...interface{}) {
	sl.log(slog.LevelError, msg, args...)
}

func (sl *StructuredLogger) log(level slog.Level, msg string, args ...interface{}) {
	attrs := make([]slog.Attr, 0, len(sl.baseAttrs)+len(args)/2)
	attrs = append(attrs, sl.baseAttrs...)
	attrs = append(attrs, sl.convertArgs(args...)...)
	sl.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func (sl *StructuredLogger) convertArgs(args ...interface{}) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)

	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		value := args[i+1]
		switch v := value.(type) {
		case string:
			attrs = append(attrs, slog.String(key, v))
		case int:
			attrs = append(attrs, slog.Int(key, v))
		case int64:
			attrs = append(attrs, slog.Int64(key, v))
		case bool:
			attrs = append(attrs, slog.Bool(key, v))
		case time.Duration:
			attrs = append(attrs, slog.Duration(key, v))
		case time.Time:
			attrs = append(attrs, slog.Time(key, v))
		case error:
			attrs = append(attrs, slog.String(key, v.Error()))
		default:
			attrs = append(attrs, slog.Any(key, v))
		}
	}

	return attrs
}

type OperationLogger struct {
	logger    *StructuredLogger
	operation string
	requestID string
	startTime time.Time
}

func (ol *OperationLogger) RequestID() string {
	return ol.requestID
}

func (ol *OperationLogger) Debug(msg string, args ...interface{}) {
	ol.logger.Debug(msg, ol.addOperationFields(args...)...)
}

func (ol *OperationLogger) Info(msg string, args ...interface{}) {
	ol.logger.Info(msg, ol.addOperationFields(args...)...)
}

func (ol *OperationLogger) Warn(msg string, args ...interface{}) {
	ol.logger.Warn(msg, ol.addOperationFields(args...)...)
}

func (ol *OperationLogger) Error(msg string, args ...interface{}) {
	ol.logger.Error(msg, ol.addOperationFields(args...)...)
}

func (ol *OperationLogger) Complete(msg string, args ...interface{}) {
	duration := time.Since(ol.startTime)
	operationArgs := ol.addOperationFields(args...)
	operationArgs = append(operationArgs, FieldDuration, duration, FieldStatus, "completed")
	ol.logger.Info(msg, operationArgs...)
}

func (ol *OperationLogger) Fail(msg string, err error, args ...interface{}) {
	duration := time.Since(ol.startTime)
	operationArgs := ol.addOperationFields(args...)
	operationArgs = append(operationArgs, FieldDuration, duration, FieldStatus, "failed", FieldError, err)
	ol.logger.Error(msg, operationArgs...)
}

func (ol *OperationLogger) addOperationFields(args ...interface{}) []interface{} {
	operationArgs := []interface{}{
		FieldOperation, ol.operation,
		FieldRequestID, ol.requestID,
		"elapsed", time.Since(ol.startTime),
	}

	return append(operationArgs, args...)
}

const (
	FieldNodeID    = "node_id"
	FieldPeerID    = "peer_id"
	FieldOperation = "operation"
	FieldDuration  = "duration"
	FieldRequestID = "request_id"
	FieldError     = "error"
	FieldStatus    = "status"
	FieldComponent = "component"
	FieldVersion   = "version"
	FieldRound     = "round"
	FieldState     = "state"
)
