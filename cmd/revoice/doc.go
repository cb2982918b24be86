// Command revoice is the CLI for the voice conversion pipeline: training
// orchestration, batch inference, environment status, configuration, and job
// ledger inspection.
package main
