package memory

import (
	"context"
	"errors"
	"testing"

	"amm-fee-lab/internal/domain"
	"amm-fee-lab/internal/storage"
)

func TestDayRecordStore_InsertAndGet(t *testing.T) {
	store := NewDayRecordStore()
	ctx := context.Background()

	records := []*domain.DayRecord{
		{RecordID: "r2", PoolID: "eth-usd", Day: 2, FeeAfter: 0.0007},
		{RecordID: "r0", PoolID: "eth-usd", Day: 0, FeeAfter: 0.0005},
		{RecordID: "r1", PoolID: "eth-usd", Day: 1, FeeAfter: 0.0006},
		{RecordID: "x0", PoolID: "meme-eth", Day: 0, FeeAfter: 0.003},
	}
	for _, r := range records {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByPoolID(ctx, "eth-usd")
	if err != nil {
		t.Fatalf("GetByPoolID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, r := range got {
		if r.Day != i {
			t.Errorf("position %d: day %d, want %d", i, r.Day, i)
		}
	}
}

func TestDayRecordStore_DuplicateKey(t *testing.T) {
	store := NewDayRecordStore()
	ctx := context.Background()

	r := &domain.DayRecord{RecordID: "r0", PoolID: "eth-usd", Day: 0}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	if err := store.Insert(ctx, r); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("error = %v, want ErrDuplicateKey", err)
	}
}

func TestDayRecordStore_InvalidInput(t *testing.T) {
	store := NewDayRecordStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil record: error = %v, want ErrInvalidInput", err)
	}
	if err := store.Insert(ctx, &domain.DayRecord{PoolID: "p"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty record_id: error = %v, want ErrInvalidInput", err)
	}
}

func TestDayRecordStore_PoolIDs(t *testing.T) {
	store := NewDayRecordStore()
	ctx := context.Background()

	for _, r := range []*domain.DayRecord{
		{RecordID: "a", PoolID: "meme-eth", Day: 0},
		{RecordID: "b", PoolID: "eth-usd", Day: 0},
		{RecordID: "c", PoolID: "eth-usd", Day: 1},
	} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	ids, err := store.PoolIDs(ctx)
	if err != nil {
		t.Fatalf("PoolIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "eth-usd" || ids[1] != "meme-eth" {
		t.Errorf("PoolIDs = %v, want [eth-usd meme-eth]", ids)
	}
}

func TestDayRecordStore_InsertCopies(t *testing.T) {
	store := NewDayRecordStore()
	ctx := context.Background()

	r := &domain.DayRecord{RecordID: "r0", PoolID: "eth-usd", Day: 0, FeeAfter: 0.0005}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the caller's record must not affect the stored copy.
	r.FeeAfter = 0.9
	got, err := store.GetByPoolID(ctx, "eth-usd")
	if err != nil {
		t.Fatalf("GetByPoolID failed: %v", err)
	}
	if got[0].FeeAfter != 0.0005 {
		t.Errorf("stored record mutated: %v", got[0].FeeAfter)
	}
}
