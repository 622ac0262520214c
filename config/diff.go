package config

import (
	"encoding/json"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffFromDefault renders the lines of cfg that differ from the stock config, prefixed with "-"
// for the stock value and "+" for cfg's. It is empty when cfg is the stock config.
func DiffFromDefault(cfg *Config) (string, error) {
	return prettyDiff(Default(), cfg)
}

func prettyDiff(left, right *Config) (string, error) {
	leftMd, err := json.MarshalIndent(left, "", "  ")
	if err != nil {
		return "", err
	}
	rightMd, err := json.MarshalIndent(right, "", "  ")
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	leftChars, rightChars, lines := dmp.DiffLinesToChars(string(leftMd), string(rightMd))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(leftChars, rightChars, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := ""
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffEqual:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				out.WriteString("\n")
			}
		}
	}
	return out.String(), nil
}
