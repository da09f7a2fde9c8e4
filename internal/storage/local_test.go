package storage_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-planner/internal/domain"
	"github.com/pkordes/travel-planner/internal/storage"
)

// failingKV is a storage.KV whose every call fails, like a disabled or full
// storage area.
type failingKV struct{}

var errDiskFull = errors.New("disk full")

func (failingKV) Get(context.Context, string) (string, bool, error) { return "", false, errDiskFull }
func (failingKV) Set(context.Context, string, string) error         { return errDiskFull }
func (failingKV) Delete(context.Context, string) error              { return errDiskFull }

var _ storage.KV = failingKV{}

func newStore(t *testing.T) (*storage.LocalStore, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	return storage.NewLocalStore(kv, slog.New(slog.DiscardHandler)), kv
}

func TestLocalStore_RoundTrip(t *testing.T) {
	full := domain.NewDocument()
	full.TripTitle = "Bangkok"
	full.UpsertActivity(domain.Activity{ID: 1, Date: "2024-01-10", Time: "09:00", Name: "Visit Temple", Location: "Bangkok"})
	full.UpsertDiaryEntry(domain.DiaryEntry{ID: 2, Date: "2024-01-11", Title: "Boat", Content: "Chao Phraya", Image: "https://img.example/boat.jpg"})
	full.UpsertBudgetItem(domain.BudgetItem{ID: 3, Category: domain.BudgetLeisure, Amount: 500, Payment: domain.PaymentCreditCard})
	full.UpsertInfoRecord(domain.InfoCar, domain.InfoRecord{ID: 4, Company: "Avis", PickUpLocation: "BKK", ReturnLocation: "HKT"})

	single := domain.NewDocument()
	single.UpsertActivity(domain.Activity{ID: 1, Name: "Only"})

	emptyStrings := domain.NewDocument()
	emptyStrings.TripTitle = ""
	emptyStrings.UpsertActivity(domain.Activity{ID: 1, Name: "x", Category: "", Location: "", Notes: ""})
	emptyStrings.UpsertInfoRecord(domain.InfoOther, domain.InfoRecord{ID: 2})

	tests := map[string]domain.Document{
		"empty collections":   domain.NewDocument(),
		"single entry":        single,
		"populated":           full,
		"empty string fields": emptyStrings,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			s, _ := newStore(t)
			ctx := context.Background()

			require.NoError(t, s.Save(ctx, doc))
			got, ok := s.Load(ctx)

			require.True(t, ok)
			assert.True(t, domain.Equal(doc, got), "round trip changed the document: %+v", got)
		})
	}
}

func TestLocalStore_SaveOverwrites(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	first := domain.NewDocument()
	first.UpsertActivity(domain.Activity{ID: 1, Name: "old"})
	second := domain.NewDocument()
	second.TripTitle = "Second"

	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	got, ok := s.Load(ctx)
	require.True(t, ok)
	assert.Empty(t, got.Itinerary, "no partial merge with the previous value")
	assert.Equal(t, "Second", got.TripTitle)
}

func TestLocalStore_Load_Absent(t *testing.T) {
	s, _ := newStore(t)

	_, ok := s.Load(context.Background())

	assert.False(t, ok)
}

// TestLocalStore_Load_Corrupt saves a document, overwrites the key with
// garbage, and expects Load to report absent rather than fail.
func TestLocalStore_Load_Corrupt(t *testing.T) {
	for _, garbage := range []string{"{not json", "null", "[1,2,3]", `"text"`, `{"itinerary":"nope"}`} {
		t.Run(garbage, func(t *testing.T) {
			s, kv := newStore(t)
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, domain.NewDocument()))

			require.NoError(t, kv.Set(ctx, storage.DocumentKey, garbage))

			_, ok := s.Load(ctx)
			assert.False(t, ok)
		})
	}
}

func TestLocalStore_LoadFillsMissingCollections(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, storage.DocumentKey, `{"tripTitle":"Old build","itinerary":[{"id":1,"name":"x"}]}`))

	got, ok := s.Load(ctx)

	require.True(t, ok)
	assert.Equal(t, "Old build", got.TripTitle)
	assert.NotNil(t, got.BudgetItems)
	assert.NotNil(t, got.InfoItems.Flight)
}

func TestLocalStore_StorageUnavailable(t *testing.T) {
	var logs bytes.Buffer
	s := storage.NewLocalStore(failingKV{}, slog.New(slog.NewJSONHandler(&logs, nil)))
	ctx := context.Background()

	err := s.Save(ctx, domain.NewDocument())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, ok := s.Load(ctx)
	assert.False(t, ok, "load must degrade to absent")

	_, ok = s.ShareID(ctx)
	assert.False(t, ok)

	assert.ErrorIs(t, s.RememberShareID(ctx, "abc"), domain.ErrStorageUnavailable)
	assert.ErrorIs(t, s.ForgetShareID(ctx), domain.ErrStorageUnavailable)
	assert.Contains(t, logs.String(), "local save failed")
}

func TestLocalStore_ShareID(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, ok := s.ShareID(ctx)
	require.False(t, ok)

	require.NoError(t, s.RememberShareID(ctx, "abc123"))
	id, ok := s.ShareID(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc123", id)

	require.NoError(t, s.ForgetShareID(ctx))
	_, ok = s.ShareID(ctx)
	assert.False(t, ok)
}
