package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-planner/internal/domain"
	"github.com/pkordes/travel-planner/internal/repo"
	"github.com/pkordes/travel-planner/internal/service"
)

// mockBinRepo is a hand-written test double for repo.BinRepo.
// Each method is a function field; set only the ones your test needs.
type mockBinRepo struct {
	create  func(ctx context.Context, doc domain.Document) (domain.Bin, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Bin, error)
	update  func(ctx context.Context, id uuid.UUID, doc domain.Document) (domain.Bin, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBinRepo) Create(ctx context.Context, doc domain.Document) (domain.Bin, error) {
	return m.create(ctx, doc)
}
func (m *mockBinRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Bin, error) {
	return m.getByID(ctx, id)
}
func (m *mockBinRepo) Update(ctx context.Context, id uuid.UUID, doc domain.Document) (domain.Bin, error) {
	return m.update(ctx, id, doc)
}
func (m *mockBinRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockBinRepo must satisfy repo.BinRepo.
var _ repo.BinRepo = (*mockBinRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func validDoc() domain.Document {
	d := domain.NewDocument()
	d.TripTitle = "Bangkok"
	d.UpsertActivity(domain.Activity{ID: 1, Date: "2024-01-10", Time: "09:00", Name: "Visit Temple"})
	d.UpsertInfoRecord(domain.InfoHotel, domain.InfoRecord{ID: 2, Name: "Riverside Inn"})
	return d
}

func echoRepo() *mockBinRepo {
	// Echoes the document back, so tests only exercise the service's rules.
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	return &mockBinRepo{
		create: func(_ context.Context, doc domain.Document) (domain.Bin, error) {
			return domain.Bin{ID: uuid.New(), Record: doc, CreatedAt: now, UpdatedAt: now}, nil
		},
		update: func(_ context.Context, id uuid.UUID, doc domain.Document) (domain.Bin, error) {
			return domain.Bin{ID: id, Record: doc, CreatedAt: now, UpdatedAt: now}, nil
		},
	}
}

// ---- Create ----------------------------------------------------------------

func TestBinService_Create_Valid(t *testing.T) {
	svc := service.NewBinService(echoRepo())

	got, err := svc.Create(context.Background(), validDoc())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.True(t, domain.Equal(validDoc(), got.Record))
}

func TestBinService_Create_NormalizesMissingCollections(t *testing.T) {
	var stored domain.Document
	r := echoRepo()
	r.create = func(_ context.Context, doc domain.Document) (domain.Bin, error) {
		stored = doc
		return domain.Bin{ID: uuid.New(), Record: doc}, nil
	}
	svc := service.NewBinService(r)

	_, err := svc.Create(context.Background(), domain.Document{TripTitle: "bare"})

	require.NoError(t, err)
	assert.NotNil(t, stored.BudgetItems)
	assert.NotNil(t, stored.InfoItems.Car)
}

func TestBinService_Create_Invalid(t *testing.T) {
	tests := map[string]func(d *domain.Document){
		"zero activity id": func(d *domain.Document) {
			d.Itinerary = append(d.Itinerary, domain.Activity{ID: 0, Name: "x"})
		},
		"negative budget id": func(d *domain.Document) {
			d.BudgetItems = append(d.BudgetItems, domain.BudgetItem{ID: -4})
		},
		"duplicate diary id": func(d *domain.Document) {
			d.DiaryEntries = append(d.DiaryEntries, domain.DiaryEntry{ID: 9}, domain.DiaryEntry{ID: 9})
		},
		"duplicate info id": func(d *domain.Document) {
			d.InfoItems.Other = append(d.InfoItems.Other, domain.InfoRecord{ID: 5}, domain.InfoRecord{ID: 5})
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			svc := service.NewBinService(&mockBinRepo{}) // repo must never be reached

			doc := validDoc()
			mutate(&doc)
			_, err := svc.Create(context.Background(), doc)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBinService_Create_SameIDInDifferentCollections(t *testing.T) {
	svc := service.NewBinService(echoRepo())

	doc := validDoc()
	doc.UpsertBudgetItem(domain.BudgetItem{ID: 1, Category: domain.BudgetFood, Payment: domain.PaymentCash})

	_, err := svc.Create(context.Background(), doc)

	assert.NoError(t, err, "ids only need to be unique within a collection")
}

func TestBinService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	svc := service.NewBinService(&mockBinRepo{
		create: func(context.Context, domain.Document) (domain.Bin, error) { return domain.Bin{}, repoErr },
	})

	_, err := svc.Create(context.Background(), validDoc())

	assert.ErrorIs(t, err, repoErr)
}

// ---- GetByID ---------------------------------------------------------------

func TestBinService_GetByID(t *testing.T) {
	want := domain.Bin{ID: uuid.New(), Record: validDoc()}
	svc := service.NewBinService(&mockBinRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Bin, error) {
			if id != want.ID {
				return domain.Bin{}, domain.ErrNotFound
			}
			return want, nil
		},
	})

	got, err := svc.GetByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)

	_, err = svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Update ----------------------------------------------------------------

func TestBinService_Update(t *testing.T) {
	svc := service.NewBinService(echoRepo())
	id := uuid.New()

	got, err := svc.Update(context.Background(), id, validDoc())

	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestBinService_Update_NotFound(t *testing.T) {
	svc := service.NewBinService(&mockBinRepo{
		update: func(context.Context, uuid.UUID, domain.Document) (domain.Bin, error) {
			return domain.Bin{}, domain.ErrNotFound
		},
	})

	_, err := svc.Update(context.Background(), uuid.New(), validDoc())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBinService_Update_Invalid(t *testing.T) {
	svc := service.NewBinService(&mockBinRepo{})
	doc := validDoc()
	doc.Itinerary[0].ID = 0

	_, err := svc.Update(context.Background(), uuid.New(), doc)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
