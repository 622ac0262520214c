package logging

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger is the Logger handed to components. Message formatting, key/value pairing and caller
// lookup are zap's; where entries end up is decided by the appenders behind its core.
type zapLogger struct {
	name  string
	level AtomicLevel
	inUTC bool
	sinks *appenderSet
	sugar *zap.SugaredLogger
}

func newZapLogger(name string, level Level, inUTC bool, appenders ...Appender) *zapLogger {
	return newZapLoggerOn(name, NewAtomicLevelAt(level), inUTC, &appenderSet{appenders: appenders})
}

func newZapLoggerOn(name string, level AtomicLevel, inUTC bool, sinks *appenderSet) *zapLogger {
	core := &appenderCore{level: level, inUTC: inUTC, sinks: sinks}
	// Skip the forwarding methods below so the caller is the component, not this file.
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if name != "" {
		base = base.Named(name)
	}
	return &zapLogger{name: name, level: level, inUTC: inUTC, sinks: sinks, sugar: base.Sugar()}
}

// Sublogger gets its own level, starting at the parent's, and shares the parent's appenders.
func (l *zapLogger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return newZapLoggerOn(name, NewAtomicLevelAt(l.level.Get()), l.inUTC, l.sinks)
}

func (l *zapLogger) AddAppender(appender Appender) { l.sinks.add(appender) }
func (l *zapLogger) SetLevel(level Level)          { l.level.Set(level) }
func (l *zapLogger) GetLevel() Level               { return l.level.Get() }
func (l *zapLogger) Sync() error                   { return l.sinks.sync() }

func (l *zapLogger) Debug(args ...interface{}) { l.sugar.Debug(args...) }
func (l *zapLogger) Info(args ...interface{})  { l.sugar.Info(args...) }
func (l *zapLogger) Warn(args ...interface{})  { l.sugar.Warn(args...) }
func (l *zapLogger) Error(args ...interface{}) { l.sugar.Error(args...) }

func (l *zapLogger) Debugf(template string, args ...interface{}) { l.sugar.Debugf(template, args...) }
func (l *zapLogger) Infof(template string, args ...interface{})  { l.sugar.Infof(template, args...) }
func (l *zapLogger) Warnf(template string, args ...interface{})  { l.sugar.Warnf(template, args...) }
func (l *zapLogger) Errorf(template string, args ...interface{}) { l.sugar.Errorf(template, args...) }

func (l *zapLogger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *zapLogger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *zapLogger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *zapLogger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// appenderSet is the list of outputs shared by a logger and its subloggers.
type appenderSet struct {
	mu        sync.RWMutex
	appenders []Appender
}

func (s *appenderSet) add(appender Appender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appenders = append(s.appenders, appender)
}

func (s *appenderSet) write(entry zapcore.Entry, fields []zapcore.Field) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var errs error
	for _, appender := range s.appenders {
		errs = multierr.Combine(errs, appender.Write(entry, fields))
	}
	return errs
}

func (s *appenderSet) sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var errs error
	for _, appender := range s.appenders {
		errs = multierr.Combine(errs, appender.Sync())
	}
	return errs
}

// appenderCore adapts an appenderSet to zapcore.Core, filtering on a level that can change at
// runtime. Write errors are reported by zap on its error output.
type appenderCore struct {
	level  AtomicLevel
	inUTC  bool
	sinks  *appenderSet
	fields []zapcore.Field
}

func (c *appenderCore) Enabled(level zapcore.Level) bool {
	return level >= c.level.Get().AsZap()
}

func (c *appenderCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

func (c *appenderCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *appenderCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if c.inUTC {
		entry.Time = entry.Time.UTC()
	}
	if len(c.fields) > 0 {
		fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	}
	return c.sinks.write(entry, fields)
}

func (c *appenderCore) Sync() error {
	return c.sinks.sync()
}
