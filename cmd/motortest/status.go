package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/chipurobo/rdk/components/encoder"
	"github.com/chipurobo/rdk/robot"
)

// Output formats for status.
const (
	formatJSON  = "json"
	formatTable = "table"
)

// resolveFormat returns format, or when it is empty, table for a terminal and json for anything
// else so that piped output stays machine readable.
func resolveFormat(format string, w io.Writer) string {
	if format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return formatTable
	}
	return formatJSON
}

func renderStatus(w io.Writer, status robot.Status, format string) error {
	switch format {
	case formatJSON:
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case formatTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Encoder", "Pins", "Active", "Simulated", "Count", "Distance (in)", "Velocity (in/s)", "Median (in/s)"})
		for _, row := range []struct {
			name   string
			status encoder.Status
		}{
			{robot.LeftEncoderName, status.LeftEncoder},
			{robot.RightEncoderName, status.RightEncoder},
		} {
			t.AppendRow(table.Row{
				row.name,
				fmt.Sprintf("%s/%s", row.status.PinA, row.status.PinB),
				row.status.Active,
				row.status.Simulated,
				row.status.Count,
				fmt.Sprintf("%.2f", row.status.DistanceIn),
				fmt.Sprintf("%.2f", row.status.VelocityInPerSec),
				fmt.Sprintf("%.2f", row.status.VelocityMedianInPerSec),
			})
		}
		board := status.Board
		if board == "" {
			board = "none"
		}
		t.AppendFooter(table.Row{"board", board, "", status.Simulated, "", "moving", status.Moving, ""})
		t.Render()
		return nil
	default:
		return errors.Errorf("unknown format %q; use %s or %s", format, formatJSON, formatTable)
	}
}
