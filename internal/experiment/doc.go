// Package experiment defines the immutable description of a training run and
// the directory layout derived from it.
//
// An Experiment is constructed once from config plus CLI flags and passed by
// reference into every pipeline component; nothing reads ambient state. The
// layout follows the collaborator toolkit's conventions: per-experiment tree
// under logs/<name> with the ground-truth, feature, and pitch artifact
// subdirectories, plus the manifest and training config at the tree root.
package experiment
