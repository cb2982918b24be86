// Package services defines the shared error taxonomy and context plumbing
// used across pipeline stages and the inference batch driver.
//
// Every fatal condition is tagged with one of the exported sentinel errors so
// the CLI can print a stable, prefixed diagnostic and exit nonzero. Wrap is
// the single construction point; it folds stage and operation context into
// the message so failures are reproducible from the log line alone.
package services
