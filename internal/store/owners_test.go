package store

import (
	"context"
	"sync"
	"testing"
)

func TestApplyOwnershipInsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fact := OwnershipFact{
		Mint:         testKey(1),
		Owner:        testKey(2),
		TokenAccount: testKey(3),
		Slot:         42,
	}
	if err := s.ApplyOwnership(ctx, fact); err != nil {
		t.Fatalf("ApplyOwnership() error = %v", err)
	}

	rec, err := s.GetOwnership(ctx, fact.Mint)
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if rec == nil {
		t.Fatal("GetOwnership() returned nil for inserted mint")
	}
	if rec.Owner != fact.Owner || rec.TokenAccount != fact.TokenAccount || rec.Slot != fact.Slot {
		t.Errorf("record = %+v, want owner %s account %s slot %d",
			rec, fact.Owner, fact.TokenAccount, fact.Slot)
	}
	if rec.BurnedSlot != nil {
		t.Errorf("BurnedSlot = %d, want nil", *rec.BurnedSlot)
	}
}

func TestGetOwnershipMissing(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.GetOwnership(context.Background(), testKey(9))
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if rec != nil {
		t.Errorf("GetOwnership() = %+v, want nil for untracked mint", rec)
	}
}

func TestApplyOwnershipHigherSlotWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mint := testKey(1)

	if err := s.ApplyOwnership(ctx, OwnershipFact{Mint: mint, Owner: testKey(2), TokenAccount: testKey(3), Slot: 5}); err != nil {
		t.Fatalf("ApplyOwnership() error = %v", err)
	}
	if err := s.ApplyOwnership(ctx, OwnershipFact{Mint: mint, Owner: testKey(4), TokenAccount: testKey(5), Slot: 9}); err != nil {
		t.Fatalf("ApplyOwnership() error = %v", err)
	}

	rec, err := s.GetOwnership(ctx, mint)
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if rec.Owner != testKey(4) || rec.Slot != 9 {
		t.Errorf("record = %+v, want owner %s slot 9", rec, testKey(4))
	}
}

func TestApplyOwnershipStaleFactIsNoOp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mint := testKey(1)

	// Out-of-order arrival: the slot-5 fact lands first, then slot 3.
	if err := s.ApplyOwnership(ctx, OwnershipFact{Mint: mint, Owner: testKey(2), TokenAccount: testKey(3), Slot: 5}); err != nil {
		t.Fatalf("ApplyOwnership() error = %v", err)
	}
	if err := s.ApplyOwnership(ctx, OwnershipFact{Mint: mint, Owner: testKey(4), TokenAccount: testKey(5), Slot: 3}); err != nil {
		t.Fatalf("ApplyOwnership() error = %v", err)
	}

	rec, err := s.GetOwnership(ctx, mint)
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if rec.Owner != testKey(2) || rec.Slot != 5 {
		t.Errorf("record = %+v, want owner %s slot 5", rec, testKey(2))
	}
}

func TestApplyOwnershipEqualSlotIsNoOp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mint := testKey(1)

	if err := s.ApplyOwnership(ctx, OwnershipFact{Mint: mint, Owner: testKey(2), TokenAccount: testKey(3), Slot: 7}); err != nil {
		t.Fatalf("ApplyOwnership() error = %v", err)
	}
	// Redelivered duplicate at the same slot must not flap the row.
	if err := s.ApplyOwnership(ctx, OwnershipFact{Mint: mint, Owner: testKey(4), TokenAccount: testKey(5), Slot: 7}); err != nil {
		t.Fatalf("ApplyOwnership() error = %v", err)
	}

	rec, err := s.GetOwnership(ctx, mint)
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if rec.Owner != testKey(2) {
		t.Errorf("owner = %s, want %s (first writer at equal slot)", rec.Owner, testKey(2))
	}
}

func TestApplyOwnershipOrderIndependent(t *testing.T) {
	facts := []OwnershipFact{
		{Mint: testKey(1), Owner: testKey(2), TokenAccount: testKey(3), Slot: 2},
		{Mint: testKey(1), Owner: testKey(4), TokenAccount: testKey(5), Slot: 8},
		{Mint: testKey(1), Owner: testKey(6), TokenAccount: testKey(6), Slot: 5},
	}
	orders := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, order := range orders {
		s := openTestStore(t)
		ctx := context.Background()

		for _, i := range order {
			if err := s.ApplyOwnership(ctx, facts[i]); err != nil {
				t.Fatalf("order %v: ApplyOwnership() error = %v", order, err)
			}
		}

		rec, err := s.GetOwnership(ctx, testKey(1))
		if err != nil {
			t.Fatalf("order %v: GetOwnership() error = %v", order, err)
		}
		if rec.Owner != testKey(4) || rec.Slot != 8 {
			t.Errorf("order %v: record = %+v, want highest-slot owner %s", order, rec, testKey(4))
		}

		count, err := s.CountOwnershipRows(ctx)
		if err != nil {
			t.Fatalf("order %v: CountOwnershipRows() error = %v", order, err)
		}
		if count != 1 {
			t.Errorf("order %v: row count = %d, want 1", order, count)
		}
	}
}

func TestApplyOwnershipConcurrentConverges(t *testing.T) {
	s := openTestStore(t)
	mint := testKey(1)

	facts := []OwnershipFact{
		{Mint: mint, Owner: testKey(2), TokenAccount: testKey(3), Slot: 5},
		{Mint: mint, Owner: testKey(4), TokenAccount: testKey(5), Slot: 7},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(facts))
	for i, fact := range facts {
		i, fact := i, fact
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.ApplyOwnership(context.Background(), fact)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("ApplyOwnership() %d error = %v", i, err)
		}
	}

	rec, err := s.GetOwnership(context.Background(), mint)
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if rec.Owner != testKey(4) || rec.Slot != 7 {
		t.Errorf("record = %+v, want slot-7 owner %s regardless of interleaving", rec, testKey(4))
	}
}

func TestApplyOwnershipSlotOverflow(t *testing.T) {
	s := openTestStore(t)

	err := s.ApplyOwnership(context.Background(), OwnershipFact{
		Mint:  testKey(1),
		Owner: testKey(2),
		Slot:  1 << 63,
	})
	if err == nil {
		t.Error("ApplyOwnership() with overflowing slot succeeded, want error")
	}
}

func TestMarkBurned(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mint := testKey(1)

	if err := s.ApplyOwnership(ctx, OwnershipFact{Mint: mint, Owner: testKey(2), TokenAccount: testKey(3), Slot: 5}); err != nil {
		t.Fatalf("ApplyOwnership() error = %v", err)
	}

	if err := s.MarkBurned(ctx, mint, 8); err != nil {
		t.Fatalf("MarkBurned() error = %v", err)
	}

	rec, err := s.GetOwnership(ctx, mint)
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if rec.BurnedSlot == nil || *rec.BurnedSlot != 8 {
		t.Fatalf("BurnedSlot = %v, want 8", rec.BurnedSlot)
	}

	// An earlier burn observation never moves the slot backwards.
	if err := s.MarkBurned(ctx, mint, 6); err != nil {
		t.Fatalf("MarkBurned() error = %v", err)
	}
	rec, err = s.GetOwnership(ctx, mint)
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if *rec.BurnedSlot != 8 {
		t.Errorf("BurnedSlot = %d after stale burn, want 8", *rec.BurnedSlot)
	}

	// A later one does.
	if err := s.MarkBurned(ctx, mint, 11); err != nil {
		t.Fatalf("MarkBurned() error = %v", err)
	}
	rec, err = s.GetOwnership(ctx, mint)
	if err != nil {
		t.Fatalf("GetOwnership() error = %v", err)
	}
	if *rec.BurnedSlot != 11 {
		t.Errorf("BurnedSlot = %d after later burn, want 11", *rec.BurnedSlot)
	}
}

func TestMarkBurnedUntrackedMint(t *testing.T) {
	s := openTestStore(t)

	if err := s.MarkBurned(context.Background(), testKey(9), 5); err != nil {
		t.Errorf("MarkBurned() for untracked mint error = %v, want nil", err)
	}

	count, err := s.CountOwnershipRows(context.Background())
	if err != nil {
		t.Fatalf("CountOwnershipRows() error = %v", err)
	}
	if count != 0 {
		t.Errorf("row count = %d, want 0 (burns never create rows)", count)
	}
}
