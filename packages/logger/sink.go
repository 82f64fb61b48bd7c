package logger

import "go.uber.org/zap"

// Sink writes progress lines as info entries. It satisfies http.ProgressSink.
type Sink struct {
	l      *zap.SugaredLogger
	fields []any
}

// NewSink returns a sink logging through l with the given key/value fields attached.
func NewSink(l *zap.SugaredLogger, keysAndValues ...any) *Sink {
	return &Sink{l: l, fields: keysAndValues}
}

func (s *Sink) WriteLine(line string) {
	s.l.Infow(line, s.fields...)
}
