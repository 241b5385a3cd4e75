package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/servicedesk/servicedesk/jobs"
)

type queueStub struct {
	addr     string
	payloads []jobs.GRCImportPayload
	closed   bool
}

func (q *queueStub) EnqueueGRCImport(_ context.Context, p jobs.GRCImportPayload) (*asynq.TaskInfo, error) {
	q.payloads = append(q.payloads, p)
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueImports}, nil
}

func (q *queueStub) Close() error {
	q.closed = true
	return nil
}

func run(t *testing.T, q *queueStub, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := newCLI(&stdout, &stderr)
	c.newQueue = func(addr string) importQueue {
		q.addr = addr
		return q
	}
	cmd := newRootCmd(c)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheckReceivePasses(t *testing.T) {
	path := writeFile(t, "receive.json", `[{"spare_code":"SP-1","grc_number":100,"issue_qty":5,"receive_qty":4,"short_qty":1}]`)
	out, err := run(t, &queueStub{}, "check-receive", path)
	require.NoError(t, err)

	var report receiveReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, receiveReport{OK: true, Lines: 1}, report)
}

func TestCheckReceiveReportsMismatch(t *testing.T) {
	path := writeFile(t, "receive.json", `[{"spare_code":"SP-9","grc_number":100,"issue_qty":5,"receive_qty":4}]`)
	out, err := run(t, &queueStub{}, "check-receive", path)
	require.ErrorIs(t, err, errChecksFailed)

	var report receiveReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.False(t, report.OK)
	require.Equal(t, "Quantity mismatch for SP-9", report.Notice.Message)
}

func TestCheckReceiveRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "receive.json", `[{"spare":"SP-1"}]`)
	_, err := run(t, &queueStub{}, "check-receive", path)
	require.ErrorContains(t, err, "decode")
}

func TestCheckReturnYAML(t *testing.T) {
	path := writeFile(t, "return.yaml", `
- spare_code: SP-1
  grc_number: 100
  good_qty: 1
  actual_pending_qty: 2
- spare_code: SP-2
  grc_number: 100
  good_qty: 2
  defective_qty: 1
  actual_pending_qty: 2
`)
	out, err := run(t, &queueStub{}, "check-return", "--output", "yaml", path)
	require.ErrorIs(t, err, errChecksFailed)

	var report returnReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	require.Equal(t, 2, report.Lines)
	require.False(t, report.Result.Valid)
	require.Equal(t, []int{1}, report.Result.FailingIndices)
}

func TestUnsupportedOutput(t *testing.T) {
	path := writeFile(t, "return.json", `[]`)
	_, err := run(t, &queueStub{}, "check-return", "-o", "xml", path)
	require.ErrorContains(t, err, "unsupported output")
}

func TestImportEnqueuesFile(t *testing.T) {
	path := writeFile(t, "grc.csv", "spare_code,grc_number\nA1,1\n")
	q := &queueStub{}
	out, err := run(t, q, "import", "--redis", "10.0.0.5:6379", "--actor", "4", path)
	require.NoError(t, err)

	require.Equal(t, "10.0.0.5:6379", q.addr)
	require.True(t, q.closed)
	require.Len(t, q.payloads, 1)
	require.Equal(t, "grc.csv", q.payloads[0].Filename)
	require.Equal(t, int64(4), q.payloads[0].ActorID)
	require.Equal(t, "spare_code,grc_number\nA1,1\n", string(q.payloads[0].Content))

	var report importReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, importReport{TaskID: "task-1", Queue: jobs.QueueImports, Filename: "grc.csv", Bytes: 27}, report)
}

func TestImportRejectsLargeAndEmptyFiles(t *testing.T) {
	path := writeFile(t, "grc.csv", "0123456789")
	_, err := run(t, &queueStub{}, "import", "--max-bytes", "5", path)
	require.ErrorContains(t, err, "larger than 5 bytes")

	empty := writeFile(t, "empty.csv", "")
	_, err = run(t, &queueStub{}, "import", empty)
	require.ErrorIs(t, err, jobs.ErrEmptyImport)
}
