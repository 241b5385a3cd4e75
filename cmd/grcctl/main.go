// Command grcctl runs GRC reconciliation checks offline and submits CSV
// imports to the worker queue.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd(newCLI(os.Stdout, os.Stderr))
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errChecksFailed) {
			os.Exit(10)
		}
		_, _ = fmt.Fprintf(os.Stderr, "grcctl: %v\n", err)
		os.Exit(1)
	}
}
