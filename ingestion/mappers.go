package ingestion

import (
	"fmt"
	"strings"
	"time"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

const signupDateLayout = "2006-01-02"

// MappingError marks a raw record whose payload does not fit its dialect's
// expected shape. It is recoverable per record: the record stays unprocessed
// and the rest of the batch continues.
type MappingError struct {
	Source string
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping %s record: field %q: %s", e.Source, e.Field, e.Reason)
}

// MapperFunc maps one raw record from a source dialect onto the canonical
// user shape. Mappers are pure: no I/O, no store access.
type MapperFunc func(record RawRecord) (models.UnifiedUser, error)

// mappers is the dialect registry. Each configured source tag must have an
// entry here; a raw record with an unknown tag cannot be normalized.
var mappers = map[string]MapperFunc{
	models.SourceCSV:       mapStandardCSV,
	models.SourceAPI:       mapAPI,
	models.SourceCSVQuirky: mapQuirkyCSV,
}

func mapStandardCSV(record RawRecord) (models.UnifiedUser, error) {
	return buildUser(record, models.SourceCSV, "id", "name", "email", "role", "signup_date")
}

func mapAPI(record RawRecord) (models.UnifiedUser, error) {
	return buildUser(record, models.SourceAPI, "id", "full_name", "contact", "access", "joined")
}

func mapQuirkyCSV(record RawRecord) (models.UnifiedUser, error) {
	return buildUser(record, models.SourceCSVQuirky, "user_id", "full_name", "contact_email", "user_role", "registered_at")
}

func buildUser(record RawRecord, source, idField, nameField, emailField, roleField, dateField string) (models.UnifiedUser, error) {
	email := record[emailField]
	if email == "" {
		return models.UnifiedUser{}, &MappingError{Source: source, Field: emailField, Reason: "missing"}
	}

	signup, err := time.Parse(signupDateLayout, record[dateField])
	if err != nil {
		return models.UnifiedUser{}, &MappingError{
			Source: source,
			Field:  dateField,
			Reason: fmt.Sprintf("bad date %q, want %s", record[dateField], signupDateLayout),
		}
	}

	return models.UnifiedUser{
		OriginalID: record[idField],
		Name:       record[nameField],
		// Identity matching is case-insensitive: emails are stored lower-cased.
		Email:      strings.ToLower(email),
		Role:       record[roleField],
		SignupDate: signup,
		Source:     source,
	}, nil
}
