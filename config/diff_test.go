package config

import (
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestDiffFromDefault(t *testing.T) {
	diff, err := DiffFromDefault(Default())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, diff, test.ShouldBeEmpty)

	cfg := Default()
	cfg.Encoders.Right.PulsesPerRevolution = 20
	cfg.Drive.StrictInput = true
	diff, err = DiffFromDefault(cfg)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	test.That(t, lines, test.ShouldContain, "+       \"ppr\": 20,")
	test.That(t, lines, test.ShouldContain, "+     \"strict_input\": true")
	for _, line := range lines {
		test.That(t, line[0], test.ShouldBeIn, byte('+'), byte('-'))
	}
	// Unchanged lines are left out.
	test.That(t, diff, test.ShouldNotContainSubstring, `"log_level"`)
}
