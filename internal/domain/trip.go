// Package domain contains the core data types for the travel planner: the
// trip document, its record types, and the pure operations that mutate it.
// This package has no I/O and is imported by every other internal package.
package domain

import (
	"reflect"
	"slices"
)

// DefaultTripTitle is the title given to a freshly created document.
const DefaultTripTitle = "My Trip"

// Document is the full persisted and synced unit: one trip.
// JSON field names match the payload stored by earlier versions of the app,
// so existing local data and shared bins keep decoding.
type Document struct {
	TripTitle    string       `json:"tripTitle"`
	Itinerary    []Activity   `json:"itinerary"`
	DiaryEntries []DiaryEntry `json:"diaryEntries"`
	BudgetItems  []BudgetItem `json:"budgetItems"`
	InfoItems    InfoItems    `json:"infoItems"`
}

// Activity is one entry in the itinerary.
// Date is a calendar date ("2006-01-02") and Time a local clock time ("15:04");
// both are kept as strings because they carry no time zone and sort lexically.
type Activity struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// DiaryEntry is a dated journal entry. Image is a URI, never embedded data.
type DiaryEntry struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

// BudgetItem is one expense. Amount is in whole currency units.
type BudgetItem struct {
	ID          int64          `json:"id"`
	Category    BudgetCategory `json:"category"`
	Description string         `json:"description"`
	Amount      int64          `json:"amount"`
	Payment     PaymentMethod  `json:"payment"`
	Notes       string         `json:"notes"`
}

// InfoRecord holds reference information for one InfoCategory.
// Only the fields of its category are populated; the rest stay empty and are
// omitted from JSON.
type InfoRecord struct {
	ID int64 `json:"id"`

	// flight
	FlightNumber     string `json:"flightNumber,omitempty"`
	DepartureAirport string `json:"departureAirport,omitempty"`
	ArrivalAirport   string `json:"arrivalAirport,omitempty"`
	DepartureTime    string `json:"departureTime,omitempty"`
	ArrivalTime      string `json:"arrivalTime,omitempty"`

	// hotel
	Name         string `json:"name,omitempty"`
	Address      string `json:"address,omitempty"`
	CheckInTime  string `json:"checkInTime,omitempty"`
	CheckOutTime string `json:"checkOutTime,omitempty"`

	// car
	Company        string `json:"company,omitempty"`
	PickUpTime     string `json:"pickUpTime,omitempty"`
	ReturnTime     string `json:"returnTime,omitempty"`
	PickUpLocation string `json:"pickUpLocation,omitempty"`
	ReturnLocation string `json:"returnLocation,omitempty"`

	// other
	Title   string `json:"title,omitempty"`
	Details string `json:"details,omitempty"`

	Notes string `json:"notes"`
}

// InfoItems groups InfoRecords by category.
type InfoItems struct {
	Flight []InfoRecord `json:"flight"`
	Hotel  []InfoRecord `json:"hotel"`
	Car    []InfoRecord `json:"car"`
	Other  []InfoRecord `json:"other"`
}

// NewDocument returns an empty document with every collection initialised.
func NewDocument() Document {
	d := Document{TripTitle: DefaultTripTitle}
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones, so a payload missing a
// field decodes to the same document as one carrying an empty array.
func (d *Document) Normalize() {
	if d.Itinerary == nil {
		d.Itinerary = []Activity{}
	}
	if d.DiaryEntries == nil {
		d.DiaryEntries = []DiaryEntry{}
	}
	if d.BudgetItems == nil {
		d.BudgetItems = []BudgetItem{}
	}
	for _, c := range InfoCategories {
		if s := d.InfoItems.slot(c); *s == nil {
			*s = []InfoRecord{}
		}
	}
}

// Clone returns a deep copy. Record types hold only value fields, so copying
// every slice is enough.
func (d Document) Clone() Document {
	out := d
	out.Itinerary = slices.Clone(d.Itinerary)
	out.DiaryEntries = slices.Clone(d.DiaryEntries)
	out.BudgetItems = slices.Clone(d.BudgetItems)
	out.InfoItems = InfoItems{
		Flight: slices.Clone(d.InfoItems.Flight),
		Hotel:  slices.Clone(d.InfoItems.Hotel),
		Car:    slices.Clone(d.InfoItems.Car),
		Other:  slices.Clone(d.InfoItems.Other),
	}
	out.Normalize()
	return out
}

// ReplaceAll swaps the whole document for other. Used when a remote snapshot
// is accepted; no field-level merge takes place.
func (d *Document) ReplaceAll(other Document) {
	*d = other.Clone()
}

// Equal reports whether a and b hold the same trip. Sequences are compared in
// order and records field by field; a nil collection equals an empty one.
func Equal(a, b Document) bool {
	return reflect.DeepEqual(a.Clone(), b.Clone())
}
