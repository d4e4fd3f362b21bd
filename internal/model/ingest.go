package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// IngestRun records one pass of the importer or one consumer session
type IngestRun struct {
	ID         uuid.UUID
	Source     string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Total      int
	Imported   int
	Changed    int
	Unchanged  int
	Skipped    int
	Failed     int
}
