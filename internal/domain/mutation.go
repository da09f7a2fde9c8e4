package domain

import (
	"fmt"
	"strings"
	"time"
)

// Mutation is a typed edit command built by the UI layer and handed to the
// sync controller as a single value. Apply validates first and leaves the
// document untouched when validation fails.
type Mutation interface {
	Apply(d *Document) error
}

// The upsert commands below carry a Now field. When it is set, a record with
// a zero id gets NextID(Now, collection) from the document it is applied to,
// so ids are picked under whatever lock guards that document.


const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// SetTitle renames the trip.
type SetTitle struct {
	Title string
}

// Apply sets the trimmed title; a blank title is rejected.
func (m SetTitle) Apply(d *Document) error {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return fmt.Errorf("%w: trip title is required", ErrValidation)
	}
	d.TripTitle = title
	return nil
}

// UpsertActivity adds an activity or edits the one with the same id.
type UpsertActivity struct {
	Activity Activity
	Now      time.Time
}

// Apply validates the activity and upserts it into the itinerary.
func (m UpsertActivity) Apply(d *Document) error {
	a := m.Activity
	if a.ID == 0 && !m.Now.IsZero() {
		a.ID = NextID(m.Now, d.Itinerary)
	}
	if err := validateID(a.ID); err != nil {
		return err
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: activity name is required", ErrValidation)
	}
	if err := validateDate(a.Date); err != nil {
		return err
	}
	if a.Time != "" {
		if _, err := time.Parse(timeLayout, a.Time); err != nil {
			return fmt.Errorf("%w: time must be HH:MM, got %q", ErrValidation, a.Time)
		}
	}
	d.UpsertActivity(a)
	return nil
}

// UpsertDiaryEntry adds a diary entry or edits the one with the same id.
type UpsertDiaryEntry struct {
	Entry DiaryEntry
	Now   time.Time
}

// Apply validates the entry and upserts it into the diary.
func (m UpsertDiaryEntry) Apply(d *Document) error {
	e := m.Entry
	if e.ID == 0 && !m.Now.IsZero() {
		e.ID = NextID(m.Now, d.DiaryEntries)
	}
	if err := validateID(e.ID); err != nil {
		return err
	}
	if err := validateDate(e.Date); err != nil {
		return err
	}
	d.UpsertDiaryEntry(e)
	return nil
}

// UpsertBudgetItem adds an expense or edits the one with the same id.
type UpsertBudgetItem struct {
	Item BudgetItem
	Now  time.Time
}

// Apply validates the expense and upserts it into the budget.
func (m UpsertBudgetItem) Apply(d *Document) error {
	b := m.Item
	if b.ID == 0 && !m.Now.IsZero() {
		b.ID = NextID(m.Now, d.BudgetItems)
	}
	if err := validateID(b.ID); err != nil {
		return err
	}
	if !b.Category.Valid() {
		return fmt.Errorf("%w: unknown budget category %q", ErrValidation, b.Category)
	}
	if !b.Payment.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, b.Payment)
	}
	if b.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	d.UpsertBudgetItem(b)
	return nil
}

// UpsertInfoRecord adds or edits a flight, hotel, car, or other record.
type UpsertInfoRecord struct {
	Category InfoCategory
	Record   InfoRecord
	Now      time.Time
}

// Apply validates the record and upserts it into its category.
func (m UpsertInfoRecord) Apply(d *Document) error {
	if !m.Category.Valid() {
		return fmt.Errorf("%w: unknown info category %q", ErrValidation, m.Category)
	}
	r := m.Record
	if r.ID == 0 && !m.Now.IsZero() {
		r.ID = NextID(m.Now, d.InfoItems.Category(m.Category))
	}
	if err := validateID(r.ID); err != nil {
		return err
	}
	d.UpsertInfoRecord(m.Category, r)
	return nil
}

// Remove deletes a record by id. Deleting an absent id is not an error.
type Remove struct {
	Collection Collection
	ID         int64
}

// Apply removes the record; an unknown collection is rejected.
func (m Remove) Apply(d *Document) error {
	if !m.Collection.Valid() {
		return fmt.Errorf("%w: unknown collection %q", ErrValidation, m.Collection)
	}
	d.Remove(m.Collection, m.ID)
	return nil
}

// Reorder moves a record immediately before another one in the same
// collection.
type Reorder struct {
	Collection Collection
	ID         int64
	BeforeID   int64
}

// Apply moves the record; an unknown collection is rejected.
func (m Reorder) Apply(d *Document) error {
	if !m.Collection.Valid() {
		return fmt.Errorf("%w: unknown collection %q", ErrValidation, m.Collection)
	}
	d.Reorder(m.Collection, m.ID, m.BeforeID)
	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be a positive caller-assigned number", ErrValidation)
	}
	return nil
}

// validateDate accepts an empty date; the UI fills today's date by default
// but older payloads may lack one.
func validateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrValidation, s)
	}
	return nil
}
