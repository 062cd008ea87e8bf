package store

import (
	"context"
	"testing"
)

func TestEnqueueAndDrainJobs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EnqueueJob(ctx, "job-a", "metadata-json", []byte(`{"uri":"a"}`)); err != nil {
		t.Fatalf("EnqueueJob() error = %v", err)
	}
	if err := s.EnqueueJob(ctx, "job-b", "fungible-token", []byte(`{"amount":5}`)); err != nil {
		t.Fatalf("EnqueueJob() error = %v", err)
	}

	jobs, err := s.PendingJobs(ctx, 10)
	if err != nil {
		t.Fatalf("PendingJobs() error = %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(jobs))
	}

	// Enqueue order is the drain order.
	if jobs[0].ID != "job-a" || jobs[1].ID != "job-b" {
		t.Errorf("drain order = [%s %s], want [job-a job-b]", jobs[0].ID, jobs[1].ID)
	}
	if jobs[0].Kind != "metadata-json" {
		t.Errorf("jobs[0].Kind = %q, want %q", jobs[0].Kind, "metadata-json")
	}
	if string(jobs[0].Payload) != `{"uri":"a"}` {
		t.Errorf("jobs[0].Payload = %q", jobs[0].Payload)
	}
	if jobs[0].Status != OutboxPending {
		t.Errorf("jobs[0].Status = %q, want %q", jobs[0].Status, OutboxPending)
	}
}

func TestEnqueueJobIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EnqueueJob(ctx, "job-a", "store-config", []byte(`{}`)); err != nil {
		t.Fatalf("EnqueueJob() error = %v", err)
	}
	// Redelivery rebuilds the same id; the second write is silently dropped.
	if err := s.EnqueueJob(ctx, "job-a", "store-config", []byte(`{"changed":true}`)); err != nil {
		t.Fatalf("repeat EnqueueJob() error = %v", err)
	}

	jobs, err := s.PendingJobs(ctx, 10)
	if err != nil {
		t.Fatalf("PendingJobs() error = %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("len(jobs) = %d, want 1", len(jobs))
	}
	if string(jobs[0].Payload) != `{}` {
		t.Errorf("payload = %q, want first write kept", jobs[0].Payload)
	}
}

func TestMarkPublished(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EnqueueJob(ctx, "job-a", "metadata-json", []byte(`{}`)); err != nil {
		t.Fatalf("EnqueueJob() error = %v", err)
	}
	if err := s.MarkPublished(ctx, "job-a"); err != nil {
		t.Fatalf("MarkPublished() error = %v", err)
	}

	jobs, err := s.PendingJobs(ctx, 10)
	if err != nil {
		t.Fatalf("PendingJobs() error = %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("len(jobs) = %d after publish, want 0", len(jobs))
	}
}

func TestPendingJobsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.EnqueueJob(ctx, id, "metadata-json", []byte(`{}`)); err != nil {
			t.Fatalf("EnqueueJob(%s) error = %v", id, err)
		}
	}

	jobs, err := s.PendingJobs(ctx, 2)
	if err != nil {
		t.Fatalf("PendingJobs() error = %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(jobs))
	}
	if jobs[0].ID != "a" || jobs[1].ID != "b" {
		t.Errorf("limited drain = [%s %s], want [a b]", jobs[0].ID, jobs[1].ID)
	}
}
