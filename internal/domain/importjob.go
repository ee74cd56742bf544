package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportJob tracks one bulk-import batch with per-row accounting.
// A row failure never fails the batch; it is counted and logged instead.
type ImportJob struct {
	ID          uuid.UUID
	JobType     string // "dictionary" or "library"
	CreatedBy   *uuid.UUID
	TotalRows   int
	SuccessRows int
	FailedRows  int
	Log         string
	CreatedAt   time.Time
}
