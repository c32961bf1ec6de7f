package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Business logic logging methods

// LogReservationCreated logs when a reservation is created
func (l *Logger) LogReservationCreated(ctx context.Context, bookingID, resourceID, venueID string) {
	l.Logger.InfoContext(ctx,
		"Reservation Created",
		slog.String("booking_id", bookingID),
		slog.String("resource_id", resourceID),
		slog.String("venue_id", venueID),
	)
}

// LogReservationConflict logs a rejected overlapping reservation attempt
func (l *Logger) LogReservationConflict(ctx context.Context, resourceID string, conflicts int) {
	l.Logger.WarnContext(ctx,
		"Reservation Conflict",
		slog.String("resource_id", resourceID),
		slog.Int("conflicts", conflicts),
	)
}

// LogPaymentFinalized logs a transaction reaching a terminal state
func (l *Logger) LogPaymentFinalized(ctx context.Context, txnID, status, source string) {
	l.Logger.InfoContext(ctx,
		"Payment Finalized",
		slog.String("transaction_id", txnID),
		slog.String("status", status),
		slog.String("source", source),
	)
}

// LogInconsistency logs a completed transaction without a materialized booking.
// The intent payload is included so an operator can repair state by hand if
// sweeps keep failing on the same transaction.
func (l *Logger) LogInconsistency(ctx context.Context, txnID string, intent string, err error) {
	l.Logger.ErrorContext(ctx,
		"Transaction/Booking Inconsistency",
		slog.String("transaction_id", txnID),
		slog.String("intent", intent),
		slog.String("error", err.Error()),
	)
}

// LogSweepSummary logs the outcome of a recovery or expiry sweep
func (l *Logger) LogSweepSummary(ctx context.Context, sweep string, checked, recovered, failed, errors int) {
	l.Logger.InfoContext(ctx,
		"Sweep Completed",
		slog.String("sweep", sweep),
		slog.Int("checked", checked),
		slog.Int("recovered", recovered),
		slog.Int("failed", failed),
		slog.Int("errors", errors),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
