package pgstore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/defectscope/internal/defect"
	"github.com/linnemanlabs/defectscope/internal/frame"
	"github.com/linnemanlabs/defectscope/internal/frame/pgstore"
	"github.com/linnemanlabs/defectscope/internal/postgres"
)

func openStore(t *testing.T) *pgstore.Store {
	t.Helper()
	dsn := os.Getenv("DEFECTSCOPE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("DEFECTSCOPE_TEST_DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("postgres.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	s, err := pgstore.New(ctx, pool)
	if err != nil {
		t.Fatalf("pgstore.New: %v", err)
	}
	return s
}

func TestPutAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond).UTC()
	sum := &frame.Summary{
		ID:        ulid.Make().String(),
		Frame:     12,
		Atoms:     10,
		Counts:    frame.Counts{defect.Bulk: 6, defect.Vacancy: 1, defect.Twin: 3},
		Duration:  0.0042,
		CreatedAt: now,
	}

	if err := s.Put(ctx, sum); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, sum.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get returned ok=false, want true")
	}
	if got.Frame != sum.Frame || got.Atoms != sum.Atoms {
		t.Errorf("Frame/Atoms = %d/%d, want %d/%d", got.Frame, got.Atoms, sum.Frame, sum.Atoms)
	}
	if got.Counts != sum.Counts {
		t.Errorf("Counts = %v, want %v", got.Counts, sum.Counts)
	}
	if got.Duration != sum.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, sum.Duration)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, ok, err := s.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("Get returned ok=true for missing id")
	}
}

func TestPutUpserts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sum := &frame.Summary{ID: ulid.Make().String(), Atoms: 1, Counts: frame.Counts{defect.Bulk: 1}, CreatedAt: time.Now()}
	if err := s.Put(ctx, sum); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sum.Atoms = 2
	sum.Counts = frame.Counts{defect.Bulk: 1, defect.Surface: 1}
	if err := s.Put(ctx, sum); err != nil {
		t.Fatalf("Put (update): %v", err)
	}

	got, _, err := s.Get(ctx, sum.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Atoms != 2 || got.Counts[defect.Surface] != 1 {
		t.Errorf("got %+v, want updated summary", got)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Now().Add(time.Hour).Truncate(time.Microsecond)
	var ids []string
	for i := 0; i < 3; i++ {
		sum := &frame.Summary{
			ID:        fmt.Sprintf("list-%s-%d", ulid.Make().String(), i),
			Frame:     i,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.Put(ctx, sum); err != nil {
			t.Fatalf("Put: %v", err)
		}
		ids = append(ids, sum.ID)
	}

	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d, want 2", len(got))
	}
	if got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Errorf("List order = [%s %s], want [%s %s]", got[0].ID, got[1].ID, ids[2], ids[1])
	}
}

func TestPutFrameIndexBeyondInt32(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sum := &frame.Summary{
		ID:        ulid.Make().String(),
		Frame:     1 << 40,
		Atoms:     1,
		Counts:    frame.Counts{defect.Bulk: 1},
		CreatedAt: time.Now(),
	}
	if err := s.Put(ctx, sum); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, sum.ID)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Frame != sum.Frame {
		t.Errorf("Frame = %d, want %d", got.Frame, sum.Frame)
	}
}
