package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// CSVSource reads a flat file with a header row. The whole file is read on
// every fetch; idempotency comes from the raw store's payload dedup, so the
// cursor is ignored.
type CSVSource struct {
	name   string
	path   string
	logger *logrus.Logger
}

func NewCSVSource(name, path string, logger *logrus.Logger) *CSVSource {
	return &CSVSource{name: name, path: path, logger: logger}
}

func (s *CSVSource) Name() string {
	return s.name
}

func (s *CSVSource) Fetch(_ string) ([]RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		// Missing file is recoverable: warn and let the run continue.
		s.logger.Warnf("CSV file not found at %s, skipping source %s", s.path, s.name)
		return nil, nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Ragged rows are tolerated: a row with the wrong field count becomes a
	// record with missing fields and fails per-record at normalization,
	// instead of aborting the whole fetch.
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header from %s: %w", s.path, err)
	}

	var records []RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row from %s: %w", s.path, err)
		}
		record := make(RawRecord, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}

	return records, nil
}
