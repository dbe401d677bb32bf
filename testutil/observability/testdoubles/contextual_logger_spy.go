package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
)

// SpyLogRecord is one captured log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Attr returns the value logged for key and whether it was present.
func (r SpyLogRecord) Attr(key string) (any, bool) {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1], true
		}
	}

	return nil, false
}

// LoggerSpy implements both orderstore.Logger and orderstore.ContextualLogger.
// Plain calls are recorded with a nil Context.
type LoggerSpy struct {
	records []SpyLogRecord
	mu      sync.Mutex
}

func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record(nil, "debug", msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any) { s.record(nil, "info", msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any) { s.record(nil, "warn", msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record(nil, "error", msg, args) }

func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

// Records returns a copy of all captured records of the given level; an empty level returns all.
func (s *LoggerSpy) Records(level string) []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]SpyLogRecord, 0, len(s.records))
	for _, r := range s.records {
		if level == "" || r.Level == level {
			result = append(result, r)
		}
	}

	return result
}

// HasLog reports whether a record with the given level and message was captured.
func (s *LoggerSpy) HasLog(level, message string) bool {
	for _, r := range s.Records(level) {
		if r.Message == message {
			return true
		}
	}

	return false
}

func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

var _ orderstore.Logger = (*LoggerSpy)(nil)
var _ orderstore.ContextualLogger = (*LoggerSpy)(nil)
