// Package testutils holds helpers shared by package tests.
package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the package's tests and fails if any goroutine is still running once they
// finish, such as an encoder worker or a fake board rotation that was never stopped.
func VerifyTestMain(m goleak.TestingM) {
	goleak.VerifyTestMain(m)
}
