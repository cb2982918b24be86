// Package ledger persists conversion job outcomes in SQLite. The batch
// driver consults it to skip inputs whose output was already produced and to
// report prior failures; the training pipeline never touches it.
package ledger
