package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/servicedesk/servicedesk/internal/grc"
)

type receiveReport struct {
	OK     bool        `json:"ok" yaml:"ok"`
	Lines  int         `json:"lines" yaml:"lines"`
	Notice *grc.Notice `json:"notice,omitempty" yaml:"notice,omitempty"`
}

type returnReport struct {
	Lines  int                  `json:"lines" yaml:"lines"`
	Result grc.UpperBoundResult `json:"result" yaml:"result"`
}

func newCheckReceiveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check-receive <file>",
		Short: "Check receive lines balance against the issued quantity",
		Long: `Reads a JSON or YAML list of receive lines and applies the same checks
the receive screen runs before saving. Exits with status 10 when a check fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lines []grc.ReceiveLine
			if err := readLines(args[0], &lines); err != nil {
				return err
			}
			notice := grc.ValidateReceive(lines)
			report := receiveReport{OK: notice == nil, Lines: len(lines), Notice: notice}
			if err := c.render(report); err != nil {
				return err
			}
			if !report.OK {
				return errChecksFailed
			}
			return nil
		},
	}
}

func newCheckReturnCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check-return <file>",
		Short: "Check return lines do not exceed the pending quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lines []grc.ReturnLine
			if err := readLines(args[0], &lines); err != nil {
				return err
			}
			result := grc.CheckUpperBound(lines)
			if err := c.render(returnReport{Lines: len(lines), Result: result}); err != nil {
				return err
			}
			if !result.Valid {
				return errChecksFailed
			}
			return nil
		},
	}
}

// readLines decodes a JSON or YAML list, chosen by file extension.
func readLines(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(target); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}
