package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueryLog is one append-only record of a search call.
type QueryLog struct {
	ID           uuid.UUID
	Source       string // "dictionary" or "library"
	Query        string
	HasResults   bool
	ResultsCount int
	UserID       *uuid.UUID
	Meta         map[string]string
	CreatedAt    time.Time
}

// QueryCount is an aggregated (query, source) bucket for analytics.
type QueryCount struct {
	Query  string
	Source string
	Times  int
}

// QueryHealth is the aggregate search-quality summary for a time window.
type QueryHealth struct {
	WindowDays        int
	TotalSearches     int
	NoResultSearches  int
	NoResultRate      float64
	TopNoResultQueries []QueryCount
	TopQueries         []QueryCount
}
