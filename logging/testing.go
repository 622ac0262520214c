package logging

import (
	"strings"
	"testing"
)

// tbWriter hands each console line to tb.Log so that output is attributed to the test that
// produced it, including parallel ones.
type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// NewTestAppender returns an appender that formats like the console appender and writes to tb.
func NewTestAppender(tb testing.TB) Appender {
	return NewWriterAppender(tbWriter{tb})
}
