package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a dictionary entry: a Lango lemma with its glosses.
type Entry struct {
	ID        uuid.UUID
	Lemma     string
	GlossLL   string // gloss in Lango
	GlossEN   string // gloss in English
	UpdatedAt time.Time
}

// EntryVariant is an alternate spelling or alias of an entry's lemma.
type EntryVariant struct {
	ID      uuid.UUID
	EntryID uuid.UUID
	Alias   string
}

// ScoredEntry is an entry with its fuzzy-search similarity scores.
type ScoredEntry struct {
	Entry
	LemmaSim float64
	GlossSim float64
}
