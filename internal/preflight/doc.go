// Package preflight validates the host before a run starts: platform
// support, interpreter availability, and directory access. Checks fail fast
// so no collaborator process launches against a broken environment.
package preflight
