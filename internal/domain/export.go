package domain

// ExportRow is a single row in the itinerary export.
// It is a flat view: one row per activity, with the day number and day date
// repeated for every activity on that day. Day is 1-indexed in date order.
type ExportRow struct {
	Day      int
	Date     string // "2006-01-02"; empty for undated activities
	Time     string // "15:04"; empty when unset
	Name     string
	Category string
	Location string
	Notes    string
}
