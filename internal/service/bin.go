// Package service contains the business logic behind both HTTP surfaces:
// the bin store's validation rules and the planner's read-only views of the
// trip document. Services depend on repo interfaces, never on SQL.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/travel-planner/internal/domain"
	"github.com/pkordes/travel-planner/internal/repo"
)

// BinService implements business logic for shared trip bins.
type BinService struct {
	repo repo.BinRepo
}

// NewBinService constructs a BinService backed by the provided BinRepo.
func NewBinService(r repo.BinRepo) *BinService {
	return &BinService{repo: r}
}

// Create validates doc and stores it as a new bin.
func (s *BinService) Create(ctx context.Context, doc domain.Document) (domain.Bin, error) {
	doc.Normalize()
	if err := ValidateDocument(doc); err != nil {
		return domain.Bin{}, fmt.Errorf("service.BinService.Create: %w", err)
	}
	bin, err := s.repo.Create(ctx, doc)
	if err != nil {
		return domain.Bin{}, fmt.Errorf("service.BinService.Create: %w", err)
	}
	return bin, nil
}

// GetByID returns the latest snapshot of a bin.
func (s *BinService) GetByID(ctx context.Context, id uuid.UUID) (domain.Bin, error) {
	bin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Bin{}, fmt.Errorf("service.BinService.GetByID: %w", err)
	}
	return bin, nil
}

// Update validates doc and overwrites the bin with it. Concurrent writers are
// not detected: whichever update reaches the database last wins.
func (s *BinService) Update(ctx context.Context, id uuid.UUID, doc domain.Document) (domain.Bin, error) {
	doc.Normalize()
	if err := ValidateDocument(doc); err != nil {
		return domain.Bin{}, fmt.Errorf("service.BinService.Update: %w", err)
	}
	bin, err := s.repo.Update(ctx, id, doc)
	if err != nil {
		return domain.Bin{}, fmt.Errorf("service.BinService.Update: %w", err)
	}
	return bin, nil
}

// ValidateDocument checks that every record carries a positive id that is
// unique within its collection. Field-level rules are enforced when a
// mutation is applied, not here: the store accepts whatever a planner
// produced.
func ValidateDocument(doc domain.Document) error {
	collections := []domain.Collection{
		domain.CollectionItinerary,
		domain.CollectionDiary,
		domain.CollectionBudget,
	}
	for _, c := range domain.InfoCategories {
		collections = append(collections, domain.Collection(c))
	}

	for _, c := range collections {
		seen := make(map[int64]bool)
		for _, id := range doc.IDs(c) {
			if id <= 0 {
				return fmt.Errorf("%w: %s: id must be positive, got %d", domain.ErrValidation, c, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: %s: duplicate id %d", domain.ErrValidation, c, id)
			}
			seen[id] = true
		}
	}
	return nil
}
