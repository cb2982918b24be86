// Package runconfig synthesizes the trainer's JSON configuration.
//
// The document combines a fixed hyperparameter schema, keyed by model
// version and target sample rate, with the experiment's sample rate, batch
// size, and manifest path. Synthesis is a pure function of the experiment;
// the output is regenerated (and overwritten) on every pipeline run and is
// never hand-edited.
package runconfig
