package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/servicedesk/servicedesk/internal/platform/cache"
	"github.com/servicedesk/servicedesk/jobs"
)

// errChecksFailed signals that the input was read but did not pass.
var errChecksFailed = errors.New("checks failed")

// importQueue submits GRC imports.
type importQueue interface {
	EnqueueGRCImport(ctx context.Context, payload jobs.GRCImportPayload) (*asynq.TaskInfo, error)
	Close() error
}

type cli struct {
	stdout   io.Writer
	stderr   io.Writer
	output   string
	newQueue func(redisAddr string) importQueue
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout: stdout,
		stderr: stderr,
		newQueue: func(redisAddr string) importQueue {
			return jobs.NewClient(cache.Options{Addr: redisAddr}.AsynqOpt())
		},
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "grcctl",
		Short:         "Operator tools for GRC receipts and returns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch c.output {
			case "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported output %q (json or yaml)", c.output)
			}
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "json", "Output format: json or yaml")

	root.AddCommand(
		newCheckReceiveCmd(c),
		newCheckReturnCmd(c),
		newImportCmd(c),
	)
	return root
}

func (c *cli) render(v any) error {
	if c.output == "yaml" {
		enc := yaml.NewEncoder(c.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
