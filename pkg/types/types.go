package types

import (
	"fmt"
	"time"
)

// Common types shared by the list, the data sources and the transport

// SortKey is the order the data source delivers leads in
type SortKey int

const (
	SortByName SortKey = iota
	SortByScore
	SortByLastVisit
)

// String returns the wire name of a SortKey
func (s SortKey) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByScore:
		return "score"
	case SortByLastVisit:
		return "last_visit"
	default:
		return "unknown"
	}
}

// Next cycles through the sort keys
func (s SortKey) Next() SortKey {
	return (s + 1) % 3
}

// ParseSortKey converts a wire name back into a SortKey
func ParseSortKey(name string) (SortKey, error) {
	switch name {
	case "", "name":
		return SortByName, nil
	case "score":
		return SortByScore, nil
	case "last_visit":
		return SortByLastVisit, nil
	default:
		return SortByName, fmt.Errorf("unknown sort key %q", name)
	}
}

// MarshalText encodes the key by name
func (s SortKey) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a key name
func (s *SortKey) UnmarshalText(text []byte) error {
	key, err := ParseSortKey(string(text))
	if err != nil {
		return err
	}
	*s = key
	return nil
}

// Lead is a visitor record shown as one row of the leads table
type Lead struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Score      int           `json:"score"`
	FirstVisit time.Time     `json:"first_visit"`
	LastVisit  time.Time     `json:"last_visit"`
	Visitors   int           `json:"visitors"`
	Visits     int           `json:"visits"`
	Duration   time.Duration `json:"duration"`
	Country    string        `json:"country"`
	Tags       []string      `json:"tags,omitempty"`
}

// Column is an optional column of the leads table
type Column int

const (
	ColumnFirstVisit Column = iota
	ColumnLastVisit
	ColumnVisitors
	ColumnVisits
	ColumnDuration
	ColumnCountry
	ColumnTags
)

// Columns lists every optional column in display order
var Columns = []Column{
	ColumnFirstVisit, ColumnLastVisit, ColumnVisitors, ColumnVisits,
	ColumnDuration, ColumnCountry, ColumnTags,
}

// String returns the header label of a Column
func (c Column) String() string {
	switch c {
	case ColumnVisits:
		return "Visits"
	case ColumnDuration:
		return "Duration"
	case ColumnCountry:
		return "Country"
	case ColumnTags:
		return "Tags"
	case ColumnFirstVisit:
		return "First visit"
	case ColumnLastVisit:
		return "Last visit"
	case ColumnVisitors:
		return "Visitors"
	default:
		return "unknown"
	}
}
