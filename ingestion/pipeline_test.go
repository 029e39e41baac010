package ingestion

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

// stubSource returns a fixed batch on every fetch.
type stubSource struct {
	name    string
	records []RawRecord
	err     error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ string) ([]RawRecord, error) {
	return s.records, s.err
}

// stubIncrementalSource filters its fixed dataset by the "joined" key, the
// way the real API source does.
type stubIncrementalSource struct {
	name    string
	records []RawRecord
}

func (s *stubIncrementalSource) Name() string        { return s.name }
func (s *stubIncrementalSource) CursorField() string { return "joined" }

func (s *stubIncrementalSource) Fetch(cursor string) ([]RawRecord, error) {
	var out []RawRecord
	for _, r := range s.records {
		if cursor != "" && r["joined"] <= cursor {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// blockingSource parks inside Fetch until released, to hold a run open.
type blockingSource struct {
	started   chan struct{}
	release   chan struct{}
	startOnce sync.Once
}

func (s *blockingSource) Name() string { return "blocking" }

func (s *blockingSource) Fetch(_ string) ([]RawRecord, error) {
	s.startOnce.Do(func() { close(s.started) })
	<-s.release
	return nil, nil
}

func demoSources() []Source {
	csv := &stubSource{
		name: models.SourceCSV,
		records: []RawRecord{
			{"id": "1", "name": "Alice", "email": "alice@example.com", "role": "admin", "signup_date": "2023-01-15"},
			{"id": "2", "name": "Bob", "email": "bob@example.com", "role": "user", "signup_date": "2023-01-20"},
		},
	}
	api := &stubIncrementalSource{
		name:    models.SourceAPI,
		records: demoAPIData(),
	}
	return []Source{csv, api}
}

func newTestPipeline(db *gorm.DB, sources ...Source) *Pipeline {
	return NewPipeline(db, newTestLogger(), sources...)
}

func TestRunOnceSuccess(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(db, demoSources()...)

	result, err := p.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSuccess, result.Status)
	assert.Equal(t, 5, result.RecordsProcessed)
	assert.Empty(t, result.Error)

	var jobs []models.ETLJob
	require.NoError(t, db.Find(&jobs).Error)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusSuccess, jobs[0].Status)
	assert.Equal(t, 5, jobs[0].RecordsProcessed)
	require.NotNil(t, jobs[0].EndTime)

	var users int64
	require.NoError(t, db.Model(&models.UnifiedUser{}).Count(&users).Error)
	assert.EqualValues(t, 5, users)

	ckpt, err := GetCheckpoint(db, models.SourceAPI)
	require.NoError(t, err)
	require.NotNil(t, ckpt)
	assert.Equal(t, "2023-03-01", ckpt.LastValue, "checkpoint holds the max ordering key of the batch")
}

func TestRunOnceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(db, demoSources()...)

	_, err := p.RunOnce()
	require.NoError(t, err)

	var rawBefore, usersBefore int64
	require.NoError(t, db.Model(&models.RawData{}).Count(&rawBefore).Error)
	require.NoError(t, db.Model(&models.UnifiedUser{}).Count(&usersBefore).Error)

	result, err := p.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSuccess, result.Status)
	assert.Equal(t, 0, result.RecordsProcessed, "nothing new to normalize")

	var rawAfter, usersAfter int64
	require.NoError(t, db.Model(&models.RawData{}).Count(&rawAfter).Error)
	require.NoError(t, db.Model(&models.UnifiedUser{}).Count(&usersAfter).Error)
	assert.Equal(t, rawBefore, rawAfter)
	assert.Equal(t, usersBefore, usersAfter)

	ckpt, err := GetCheckpoint(db, models.SourceAPI)
	require.NoError(t, err)
	require.NotNil(t, ckpt)
	assert.Equal(t, "2023-03-01", ckpt.LastValue, "cursor unchanged when the source has nothing new")
}

func TestRunOnceFetchErrorMarksJobFailed(t *testing.T) {
	db := newTestDB(t)
	good := &stubSource{
		name:    models.SourceCSV,
		records: []RawRecord{{"id": "1", "name": "Alice", "email": "alice@example.com", "role": "admin", "signup_date": "2023-01-15"}},
	}
	bad := &stubSource{name: "broken", err: errors.New("disk on fire")}
	p := newTestPipeline(db, good, bad)

	result, err := p.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, result.Status)
	assert.Contains(t, result.Error, "disk on fire")

	var jobs []models.ETLJob
	require.NoError(t, db.Find(&jobs).Error)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusFailed, jobs[0].Status)
	require.NotNil(t, jobs[0].EndTime)
	require.NotNil(t, jobs[0].ErrorMessage)
	assert.NotEmpty(t, *jobs[0].ErrorMessage)

	// Progress made before the failure is retained.
	var raw int64
	require.NoError(t, db.Model(&models.RawData{}).Count(&raw).Error)
	assert.EqualValues(t, 1, raw)
}

func TestRunOnceMalformedRecordStillSucceeds(t *testing.T) {
	db := newTestDB(t)
	src := &stubSource{
		name: models.SourceCSV,
		records: []RawRecord{
			{"id": "1", "name": "Alice", "email": "alice@example.com", "role": "admin", "signup_date": "2023-01-15"},
			{"id": "2", "name": "Bad Date", "email": "bad@example.com", "role": "user", "signup_date": "soon"},
		},
	}
	p := newTestPipeline(db, src)

	result, err := p.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSuccess, result.Status)
	assert.Equal(t, 1, result.RecordsProcessed)

	pending, err := CountPendingRaw(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
}

func TestRunOnceRaggedCSVRowStillSucceeds(t *testing.T) {
	db := newTestDB(t)
	path := writeCSV(t, "id,name,email,role,signup_date\n1,Alice,alice@example.com,admin,2023-01-15\n2,Bob\n")
	p := newTestPipeline(db, NewCSVSource(models.SourceCSV, path, newTestLogger()))

	result, err := p.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSuccess, result.Status)
	assert.Equal(t, 1, result.RecordsProcessed)

	// The short row is staged but stays pending: its missing fields fail at
	// normalization, not at fetch.
	pending, err := CountPendingRaw(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
}

func TestRunOncePersistenceErrorMarksJobFailed(t *testing.T) {
	db := newTestDB(t)
	src := &stubSource{
		name:    models.SourceCSV,
		records: []RawRecord{{"id": "1", "name": "Alice", "email": "alice@example.com", "role": "admin", "signup_date": "2023-01-15"}},
	}
	p := newTestPipeline(db, src)

	// Break the store under the final step: ingestion works, the upsert fails.
	require.NoError(t, db.Migrator().DropTable(&models.UnifiedUser{}))

	result, err := p.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, result.Status)
	assert.NotEmpty(t, result.Error)

	var jobs []models.ETLJob
	require.NoError(t, db.Find(&jobs).Error)
	require.Len(t, jobs, 1, "exactly one job row for the run")
	assert.Equal(t, models.JobStatusFailed, jobs[0].Status)
	require.NotNil(t, jobs[0].EndTime)
	require.NotNil(t, jobs[0].ErrorMessage)
	assert.NotEmpty(t, *jobs[0].ErrorMessage)

	// Staged rows survive the failed run and stay pending.
	var raw int64
	require.NoError(t, db.Model(&models.RawData{}).Where("processed = ?", false).Count(&raw).Error)
	assert.EqualValues(t, 1, raw)
}

func TestRunOnceRejectsOverlappingRuns(t *testing.T) {
	db := newTestDB(t)
	blocker := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	p := newTestPipeline(db, blocker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.RunOnce()
	}()

	<-blocker.started
	_, err := p.RunOnce()
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(blocker.release)
	<-done

	// The guard releases once the run reaches a terminal state.
	result, err := p.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSuccess, result.Status)
}
