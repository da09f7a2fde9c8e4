package domain

import (
	"slices"
	"time"
)

// Collection names one id-keyed sequence inside a Document.
// The four info categories are collections in their own right.
type Collection string

const (
	CollectionItinerary Collection = "itinerary"
	CollectionDiary     Collection = "diaryEntries"
	CollectionBudget    Collection = "budgetItems"
	CollectionFlight    Collection = "flight"
	CollectionHotel     Collection = "hotel"
	CollectionCar       Collection = "car"
	CollectionOther     Collection = "other"
)

// InfoCategory selects the shape of an InfoRecord.
type InfoCategory string

const (
	InfoFlight InfoCategory = "flight"
	InfoHotel  InfoCategory = "hotel"
	InfoCar    InfoCategory = "car"
	InfoOther  InfoCategory = "other"
)

// InfoCategories lists every category in display order.
var InfoCategories = []InfoCategory{InfoFlight, InfoHotel, InfoCar, InfoOther}

// Valid reports whether c is a known category.
func (c InfoCategory) Valid() bool {
	return slices.Contains(InfoCategories, c)
}

// Valid reports whether c names a collection of the Document.
func (c Collection) Valid() bool {
	switch c {
	case CollectionItinerary, CollectionDiary, CollectionBudget:
		return true
	}
	return InfoCategory(c).Valid()
}

// BudgetCategory classifies an expense.
type BudgetCategory string

const (
	BudgetFood          BudgetCategory = "food"
	BudgetShopping      BudgetCategory = "shopping"
	BudgetTransport     BudgetCategory = "transport"
	BudgetLeisure       BudgetCategory = "leisure"
	BudgetAccommodation BudgetCategory = "accommodation"
	BudgetOther         BudgetCategory = "other"
)

// BudgetCategories lists every budget category in display order.
var BudgetCategories = []BudgetCategory{
	BudgetFood, BudgetShopping, BudgetTransport, BudgetLeisure, BudgetAccommodation, BudgetOther,
}

// Valid reports whether c is a known budget category.
func (c BudgetCategory) Valid() bool {
	return slices.Contains(BudgetCategories, c)
}

// PaymentMethod records how an expense was paid.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentCash       PaymentMethod = "cash"
	PaymentDebitCard  PaymentMethod = "debit-card"
	PaymentEWallet    PaymentMethod = "e-wallet"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCreditCard, PaymentCash, PaymentDebitCard, PaymentEWallet:
		return true
	}
	return false
}

// Record is implemented by every record type stored in a collection.
type Record interface {
	RecordID() int64
}

// RecordID implements Record for each collection's record type.
func (a Activity) RecordID() int64   { return a.ID }
func (e DiaryEntry) RecordID() int64 { return e.ID }
func (b BudgetItem) RecordID() int64 { return b.ID }
func (r InfoRecord) RecordID() int64 { return r.ID }

// UpsertRecord replaces the record with rec's id in place, or appends rec.
func UpsertRecord[T Record](items []T, rec T) []T {
	if i := indexOf(items, rec.RecordID()); i >= 0 {
		items[i] = rec
		return items
	}
	return append(items, rec)
}

// RemoveRecord returns items without the record identified by id.
// Removing an absent id returns items unchanged.
func RemoveRecord[T Record](items []T, id int64) []T {
	return slices.DeleteFunc(items, func(r T) bool { return r.RecordID() == id })
}

// ReorderRecord moves the record id so it sits immediately before beforeID.
// It is a no-op when either id is absent or both are the same record.
func ReorderRecord[T Record](items []T, id, beforeID int64) []T {
	if id == beforeID {
		return items
	}
	from := indexOf(items, id)
	if from < 0 || indexOf(items, beforeID) < 0 {
		return items
	}
	rec := items[from]
	items = slices.Delete(items, from, from+1)
	return slices.Insert(items, indexOf(items, beforeID), rec)
}

// ContainsRecord reports whether items holds a record with id.
func ContainsRecord[T Record](items []T, id int64) bool {
	return indexOf(items, id) >= 0
}

func indexOf[T Record](items []T, id int64) int {
	return slices.IndexFunc(items, func(r T) bool { return r.RecordID() == id })
}

// NextID returns a wall-clock derived id (Unix milliseconds) that does not
// collide with any id in items. When the clock has not advanced past the
// largest existing id, the result is that id plus one.
func NextID[T Record](now time.Time, items []T) int64 {
	id := now.UnixMilli()
	for _, r := range items {
		if r.RecordID() >= id {
			id = r.RecordID() + 1
		}
	}
	return id
}

// slot returns a pointer to the info slice for c. Callers must pass a valid
// category.
func (i *InfoItems) slot(c InfoCategory) *[]InfoRecord {
	switch c {
	case InfoFlight:
		return &i.Flight
	case InfoHotel:
		return &i.Hotel
	case InfoCar:
		return &i.Car
	default:
		return &i.Other
	}
}

// Category returns the records stored under c.
func (i InfoItems) Category(c InfoCategory) []InfoRecord {
	return *i.slot(c)
}

// UpsertActivity replaces or appends an itinerary activity.
func (d *Document) UpsertActivity(a Activity) {
	d.Itinerary = UpsertRecord(d.Itinerary, a)
}

// UpsertDiaryEntry replaces or appends a diary entry.
func (d *Document) UpsertDiaryEntry(e DiaryEntry) {
	d.DiaryEntries = UpsertRecord(d.DiaryEntries, e)
}

// UpsertBudgetItem replaces or appends a budget item.
func (d *Document) UpsertBudgetItem(b BudgetItem) {
	d.BudgetItems = UpsertRecord(d.BudgetItems, b)
}

// UpsertInfoRecord replaces or appends an info record under category c.
func (d *Document) UpsertInfoRecord(c InfoCategory, r InfoRecord) {
	s := d.InfoItems.slot(c)
	*s = UpsertRecord(*s, r)
}

// Remove deletes the record id from collection c. Unknown collections and
// absent ids are ignored.
func (d *Document) Remove(c Collection, id int64) {
	switch c {
	case CollectionItinerary:
		d.Itinerary = RemoveRecord(d.Itinerary, id)
	case CollectionDiary:
		d.DiaryEntries = RemoveRecord(d.DiaryEntries, id)
	case CollectionBudget:
		d.BudgetItems = RemoveRecord(d.BudgetItems, id)
	default:
		if cat := InfoCategory(c); cat.Valid() {
			s := d.InfoItems.slot(cat)
			*s = RemoveRecord(*s, id)
		}
	}
}

// Reorder moves record id immediately before beforeID within collection c.
// This backs drag-and-drop in the itinerary view.
func (d *Document) Reorder(c Collection, id, beforeID int64) {
	switch c {
	case CollectionItinerary:
		d.Itinerary = ReorderRecord(d.Itinerary, id, beforeID)
	case CollectionDiary:
		d.DiaryEntries = ReorderRecord(d.DiaryEntries, id, beforeID)
	case CollectionBudget:
		d.BudgetItems = ReorderRecord(d.BudgetItems, id, beforeID)
	default:
		if cat := InfoCategory(c); cat.Valid() {
			s := d.InfoItems.slot(cat)
			*s = ReorderRecord(*s, id, beforeID)
		}
	}
}

// IDs returns the ids of collection c in stored order.
func (d Document) IDs(c Collection) []int64 {
	switch c {
	case CollectionItinerary:
		return ids(d.Itinerary)
	case CollectionDiary:
		return ids(d.DiaryEntries)
	case CollectionBudget:
		return ids(d.BudgetItems)
	default:
		if cat := InfoCategory(c); cat.Valid() {
			return ids(d.InfoItems.Category(cat))
		}
	}
	return nil
}

func ids[T Record](items []T) []int64 {
	out := make([]int64, len(items))
	for i, r := range items {
		out[i] = r.RecordID()
	}
	return out
}
