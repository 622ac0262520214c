package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.log")
	appender, closer := NewFileAppender(path, 10*megabyte)

	logger := NewBlankLogger("motortest")
	logger.SetLevel(INFO)
	logger.AddAppender(appender)
	logger.Infow("maneuver", "name", "forward")
	logger.Debug("dropped at info")
	test.That(t, closer.Close(), test.ShouldBeNil)

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "INFO\tmotortest")
	test.That(t, string(contents), test.ShouldContainSubstring, `{"name":"forward"}`)
	test.That(t, string(contents), test.ShouldNotContainSubstring, "dropped")
}

func TestRotationMegabytes(t *testing.T) {
	test.That(t, rotationMegabytes(0), test.ShouldEqual, 1)
	test.That(t, rotationMegabytes(512<<10), test.ShouldEqual, 1)
	test.That(t, rotationMegabytes(10*megabyte), test.ShouldEqual, 10)
	test.That(t, rotationMegabytes(10*megabyte+1), test.ShouldEqual, 11)
}
