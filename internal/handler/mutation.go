package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkordes/travel-planner/internal/domain"
)

// Mutation ops accepted by POST /mutations.
const (
	OpSetTitle = "setTitle"
	OpUpsert   = "upsert"
	OpRemove   = "remove"
	OpReorder  = "reorder"
)

// MutationRequest is the JSON envelope of POST /mutations:
//
//	{"op":"setTitle","title":"Bangkok"}
//	{"op":"upsert","collection":"itinerary","record":{...}}
//	{"op":"remove","collection":"budgetItems","id":1704873600000}
//	{"op":"reorder","collection":"itinerary","id":2,"beforeId":1}
//
// Info records use their category ("flight", "hotel", "car", "other") as the
// collection. An upserted record without an id is given a fresh one.
type MutationRequest struct {
	Op         string            `json:"op"`
	Title      string            `json:"title,omitempty"`
	Collection domain.Collection `json:"collection,omitempty"`
	Record     json.RawMessage   `json:"record,omitempty"`
	ID         int64             `json:"id,omitempty"`
	BeforeID   int64             `json:"beforeId,omitempty"`
}

// toMutation converts the envelope into a domain mutation. Upserts carry now
// so a missing id is assigned when the mutation is applied, against the
// document it lands on. Errors wrap domain.ErrValidation.
func (req MutationRequest) toMutation(now time.Time) (domain.Mutation, error) {
	switch req.Op {
	case OpSetTitle:
		return domain.SetTitle{Title: req.Title}, nil
	case OpRemove:
		return domain.Remove{Collection: req.Collection, ID: req.ID}, nil
	case OpReorder:
		return domain.Reorder{Collection: req.Collection, ID: req.ID, BeforeID: req.BeforeID}, nil
	case OpUpsert:
		return req.upsert(now)
	case "":
		return nil, fmt.Errorf("%w: op is required", domain.ErrValidation)
	default:
		return nil, fmt.Errorf("%w: unknown op %q", domain.ErrValidation, req.Op)
	}
}

func (req MutationRequest) upsert(now time.Time) (domain.Mutation, error) {
	if len(req.Record) == 0 {
		return nil, fmt.Errorf("%w: record is required", domain.ErrValidation)
	}

	switch req.Collection {
	case domain.CollectionItinerary:
		var a domain.Activity
		if err := decodeInto(req.Record, &a); err != nil {
			return nil, err
		}
		return domain.UpsertActivity{Activity: a, Now: now}, nil
	case domain.CollectionDiary:
		var e domain.DiaryEntry
		if err := decodeInto(req.Record, &e); err != nil {
			return nil, err
		}
		return domain.UpsertDiaryEntry{Entry: e, Now: now}, nil
	case domain.CollectionBudget:
		var b domain.BudgetItem
		if err := decodeInto(req.Record, &b); err != nil {
			return nil, err
		}
		return domain.UpsertBudgetItem{Item: b, Now: now}, nil
	}

	cat := domain.InfoCategory(req.Collection)
	if !cat.Valid() {
		return nil, fmt.Errorf("%w: unknown collection %q", domain.ErrValidation, req.Collection)
	}
	var rec domain.InfoRecord
	if err := decodeInto(req.Record, &rec); err != nil {
		return nil, err
	}
	return domain.UpsertInfoRecord{Category: cat, Record: rec, Now: now}, nil
}

func decodeInto(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid record: %s", domain.ErrValidation, err)
	}
	return nil
}
