package store

// Outcome describes what an upsert did to the stored state
type Outcome int

const (
	// Unchanged means the record matched stored state exactly
	Unchanged Outcome = iota
	// Created means a new row was inserted for the natural key
	Created
	// Updated means an existing row, or rows it owns, changed
	Updated
	// Skipped means the record was older than stored state and was ignored
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// merge combines the outcome of a parent row with one of its owned rows
func (o Outcome) merge(child Outcome) Outcome {
	if o == Unchanged && (child == Created || child == Updated) {
		return Updated
	}
	return o
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}
