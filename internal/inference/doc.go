// Package inference drives batch voice conversion: it discovers input audio,
// resolves the checkpoint once, and converts each file sequentially through
// the collaborator. The first failure aborts the batch; outputs already
// written stay on disk.
package inference
