package interceptor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// LoggingInterceptor logs every dispatched call with its duration and
// outcome.
type LoggingInterceptor struct {
	logger *zap.Logger
	starts sync.Map // call id → time.Time
}

// NewLoggingInterceptor creates a logging interceptor. A nil logger
// falls back to the process-global zap logger.
func NewLoggingInterceptor(logger *zap.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = zap.L()
	}
	return &LoggingInterceptor{logger: logger}
}

func (l *LoggingInterceptor) Before(inv *Invocation) bool {
	l.starts.Store(inv.CallID, time.Now())
	l.logger.Debug("call started",
		zap.String("call_id", inv.CallID),
		zap.String("handler", inv.HandlerName),
		zap.String("method", inv.MethodName),
		zap.Int("args", len(inv.Arguments)))
	return true
}

func (l *LoggingInterceptor) After(inv *Invocation, result Result) Result {
	l.logger.Info("call completed",
		zap.String("call_id", inv.CallID),
		zap.String("handler", inv.HandlerName),
		zap.String("method", inv.MethodName),
		zap.Duration("duration", l.elapsed(inv)))
	return result
}

func (l *LoggingInterceptor) OnException(inv *Invocation, err error) {
	l.logger.Warn("call failed",
		zap.String("call_id", inv.CallID),
		zap.String("handler", inv.HandlerName),
		zap.String("method", inv.MethodName),
		zap.Duration("duration", l.elapsed(inv)),
		zap.Error(err))
}

func (l *LoggingInterceptor) elapsed(inv *Invocation) time.Duration {
	if start, ok := l.starts.LoadAndDelete(inv.CallID); ok {
		return time.Since(start.(time.Time))
	}
	return 0
}
