package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// Logger is the global logger instance
	Logger zerolog.Logger
)

// Level represents log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger
func Init(cfg Config) {
	// Set log level
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Use JSON or console output
	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger with component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithTodoID creates a child logger with todo_id field
func WithTodoID(todoID string) zerolog.Logger {
	return Logger.With().Str("todo_id", todoID).Logger()
}

// WithAgent creates a child logger with agent field
func WithAgent(agent string) zerolog.Logger {
	return Logger.With().Str("agent", agent).Logger()
}

// WithTxnID creates a child logger with txn_id field, correlating all
// log lines emitted by one operation call.
func WithTxnID(txnID string) zerolog.Logger {
	return Logger.With().Str("txn_id", txnID).Logger()
}

// NewTxnID generates a fresh correlation id for one operation call,
// threaded through every log line that operation emits.
func NewTxnID() string {
	return uuid.New().String()
}

// LogOperation logs one structured event per completed Todo Service or
// Concurrency Engine operation: operation, todo_id, agent, version,
// txn_id, and an outcome derived from err. A nil err logs at Info with
// outcome "committed"; a storage-fatal error (jarierr.ExitStorageError)
// logs at Error with outcome "error"; any other domain error logs at
// Warn with outcome "failed" — these are the recoverable cases
// (ConflictPending, AlreadyClaimed, NotClaimable, and similar) that the
// caller is expected to act on rather than treat as a bug.
func LogOperation(operation, todoID, agent string, version int64, txnID string, err error) {
	if err == nil {
		Logger.Info().
			Str("operation", operation).
			Str("todo_id", todoID).
			Str("agent", agent).
			Int64("version", version).
			Str("txn_id", txnID).
			Str("outcome", "committed").
			Msg("todo operation")
		return
	}

	level := Logger.Warn()
	outcome := "failed"
	var ec jarierr.ExitCoder
	if errors.As(err, &ec) && ec.ExitCode() == jarierr.ExitStorageError {
		level = Logger.Error()
		outcome = "error"
	}
	level.
		Str("operation", operation).
		Str("todo_id", todoID).
		Str("agent", agent).
		Int64("version", version).
		Str("txn_id", txnID).
		Str("outcome", outcome).
		Err(err).
		Msg("todo operation")
}

// Helper functions for common logging patterns
func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}
