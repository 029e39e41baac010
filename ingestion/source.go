package ingestion

import "encoding/json"

// RawRecord is one as-fetched record in its source's native field dialect.
type RawRecord map[string]string

// Serialize renders the record as canonical JSON. encoding/json writes map
// keys in sorted order, so the same record always serializes to the same
// bytes, which is what the raw store's content dedup relies on.
func (r RawRecord) Serialize() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Source is the uniform pull interface over any origin. Fetch with an empty
// cursor returns the full available dataset; with a cursor it returns only
// records whose ordering key strictly exceeds it. A missing or unreachable
// backing resource is not an error: the adapter logs a warning and returns an
// empty batch so the run can continue with the other sources. Sources never
// retry internally.
type Source interface {
	Name() string
	Fetch(cursor string) ([]RawRecord, error)
}

// IncrementalSource is a Source whose progress is tracked by a checkpoint.
// CursorField names the record field that carries the ordering key.
type IncrementalSource interface {
	Source
	CursorField() string
}
