// Package checkpoint discovers and ranks trainer weight files.
//
// Checkpoints are named <experiment>..._e<epoch>...<ext> by the external
// trainer; this package only reads and ranks, it never writes.
package checkpoint
