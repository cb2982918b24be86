// Package manifest reconciles per-sample artifact directories into the
// training manifest consumed by the trainer.
//
// A sample is included only when all four of its artifacts exist; incomplete
// samples are logged and skipped, never partially recorded. The manifest is
// rebuilt wholesale on every run, validated in full, and installed with an
// atomic replace so a failed rebuild cannot corrupt a previously valid file.
// Record order is stem-sorted (bytewise) so rebuilds over an unchanged
// artifact tree are byte-identical.
package manifest
