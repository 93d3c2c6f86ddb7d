package models

import "time"

// Segment is a named, reusable audience definition: a filter state over a table
// plus the records it matched when it was saved
type Segment struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Description  string      `json:"description" yaml:"description"`
	Table        string      `json:"table" yaml:"table"`
	Filters      FilterState `json:"filters" yaml:"filters"`
	MatchedCount int         `json:"matchedCount" yaml:"matched_count"`
	Records      []Record    `json:"records,omitempty" yaml:"records,omitempty"`
	CreatedAt    time.Time   `json:"createdAt" yaml:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" yaml:"updated_at"`
}
