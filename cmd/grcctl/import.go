package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/servicedesk/servicedesk/jobs"
)

type importReport struct {
	TaskID   string `json:"task_id" yaml:"task_id"`
	Queue    string `json:"queue" yaml:"queue"`
	Filename string `json:"filename" yaml:"filename"`
	Bytes    int    `json:"bytes" yaml:"bytes"`
}

func newImportCmd(c *cli) *cobra.Command {
	var (
		redisAddr string
		actorID   int64
		maxBytes  int64
	)
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Queue a GRC CSV for import by the worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readLimited(args[0], maxBytes)
			if err != nil {
				return err
			}
			queue := c.newQueue(redisAddr)
			defer func() {
				_ = queue.Close()
			}()
			info, err := queue.EnqueueGRCImport(cmd.Context(), jobs.GRCImportPayload{
				Filename: filepath.Base(args[0]),
				Content:  content,
				ActorID:  actorID,
			})
			if err != nil {
				return fmt.Errorf("enqueue import: %w", err)
			}
			return c.render(importReport{
				TaskID:   info.ID,
				Queue:    info.Queue,
				Filename: filepath.Base(args[0]),
				Bytes:    len(content),
			})
		},
	}
	cmd.Flags().StringVar(&redisAddr, "redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "Redis address of the job queue")
	cmd.Flags().Int64Var(&actorID, "actor", 0, "User id recorded in the audit log")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 10<<20, "Reject files larger than this")
	return cmd
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, limit)
	}
	if len(data) == 0 {
		return nil, jobs.ErrEmptyImport
	}
	return data, nil
}
