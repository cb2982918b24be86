package ledger_test

import (
	"context"
	"testing"

	"revoice/internal/ledger"
	"revoice/internal/testsupport"
)

func newStore(t *testing.T) *ledger.Store {
	t.Helper()
	return testsupport.MustOpenLedger(t, testsupport.NewConfig(t))
}

func job(experiment, stem string) ledger.Job {
	return ledger.Job{
		Experiment: experiment,
		InputPath:  "/in/" + stem + ".wav",
		OutputPath: "/out/" + stem + "_converted.wav",
		Checkpoint: "/w/" + experiment + "_e12.pth",
	}
}

func TestRecordCompletedAndIsCompleted(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	entry := job("Test", "a")
	if err := store.RecordCompleted(ctx, entry); err != nil {
		t.Fatalf("RecordCompleted: %v", err)
	}

	done, err := store.IsCompleted(ctx, entry.OutputPath)
	if err != nil {
		t.Fatalf("IsCompleted: %v", err)
	}
	if !done {
		t.Fatal("recorded output should report completed")
	}

	done, err = store.IsCompleted(ctx, "/out/other.wav")
	if err != nil {
		t.Fatalf("IsCompleted: %v", err)
	}
	if done {
		t.Fatal("unknown output should not report completed")
	}
}

func TestFailedOutcomeDoesNotCountAsCompleted(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	entry := job("Test", "a")
	entry.Detail = "collaborator exited with failure"
	if err := store.RecordFailed(ctx, entry); err != nil {
		t.Fatalf("RecordFailed: %v", err)
	}

	done, err := store.IsCompleted(ctx, entry.OutputPath)
	if err != nil {
		t.Fatalf("IsCompleted: %v", err)
	}
	if done {
		t.Fatal("failed outcome must not count as completed")
	}
}

func TestRecordUpsertsByOutputPath(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	entry := job("Test", "a")
	if err := store.RecordFailed(ctx, entry); err != nil {
		t.Fatalf("RecordFailed: %v", err)
	}
	if err := store.RecordCompleted(ctx, entry); err != nil {
		t.Fatalf("RecordCompleted: %v", err)
	}

	jobs, err := store.List(ctx, "Test")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected one row after upsert, got %d", len(jobs))
	}
	if jobs[0].Status != ledger.StatusCompleted {
		t.Fatalf("status = %q, want completed", jobs[0].Status)
	}
}

func TestListFiltersByExperiment(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.RecordCompleted(ctx, job("Alpha", "a")); err != nil {
		t.Fatalf("RecordCompleted: %v", err)
	}
	if err := store.RecordCompleted(ctx, job("Beta", "b")); err != nil {
		t.Fatalf("RecordCompleted: %v", err)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two rows, got %d", len(all))
	}

	alpha, err := store.List(ctx, "Alpha")
	if err != nil {
		t.Fatalf("List Alpha: %v", err)
	}
	if len(alpha) != 1 || alpha[0].Experiment != "Alpha" {
		t.Fatalf("unexpected filtered rows: %+v", alpha)
	}
}

func TestClearScopedAndGlobal(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.RecordCompleted(ctx, job("Alpha", "a")); err != nil {
		t.Fatalf("RecordCompleted: %v", err)
	}
	if err := store.RecordCompleted(ctx, job("Beta", "b")); err != nil {
		t.Fatalf("RecordCompleted: %v", err)
	}

	if err := store.Clear(ctx, "Alpha"); err != nil {
		t.Fatalf("Clear Alpha: %v", err)
	}
	remaining, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Experiment != "Beta" {
		t.Fatalf("scoped clear left wrong rows: %+v", remaining)
	}

	if err := store.Clear(ctx, ""); err != nil {
		t.Fatalf("Clear all: %v", err)
	}
	remaining, err = store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("global clear left rows: %+v", remaining)
	}
}

func TestReopenPreservesRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	if err := store.RecordCompleted(context.Background(), job("Test", "a")); err != nil {
		t.Fatalf("RecordCompleted: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	jobs, err := reopened.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected persisted row, got %d", len(jobs))
	}
}
