package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

const megabyte = 1 << 20

// NewFileAppender returns an appender writing console formatted lines to filename. The file is
// rotated once it grows past maxBytes, rounded up to whole megabytes, keeping three compressed
// backups. Close the returned closer when done logging.
func NewFileAppender(filename string, maxBytes int64) (ConsoleAppender, io.Closer) {
	out := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    rotationMegabytes(maxBytes),
		MaxBackups: 3,
		Compress:   true,
	}
	return NewWriterAppender(out), out
}

func rotationMegabytes(maxBytes int64) int {
	if maxBytes <= megabyte {
		return 1
	}
	return int((maxBytes + megabyte - 1) / megabyte)
}
