package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"revoice/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if msg := diagnostic(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
}

// diagnostic formats err for stderr. Cancellation exits silently; errors
// outside the pipeline taxonomy are flagged so stack bugs stand out from
// expected operational failures.
func diagnostic(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return ""
	case services.Fatal(err):
		return "revoice: " + err.Error()
	default:
		return "revoice: unexpected error: " + err.Error()
	}
}
