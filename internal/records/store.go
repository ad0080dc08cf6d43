package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/heatlog/internal/logger"
	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/storage"
	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// UpdatedAtLayout matches the millisecond UTC timestamps written by the
// other clients of the same data.
const UpdatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Options wires a Store to its data sources. Every field is optional.
type Options struct {
	Cache storage.Cache
	// Backend is nil when no remote backend is configured.
	Backend Backend
	// Bootstrap fetches the static bootstrap file.
	Bootstrap func(ctx context.Context) (model.Records, error)
	// HasCredential reports whether a backend credential was resolved.
	HasCredential bool
	Now           func() time.Time
}

// Store is the in-memory DateKey -> DayRecord mapping for one session.
// All mutation goes through Upsert or Save. It is not safe for concurrent use.
type Store struct {
	records       model.Records
	cache         storage.Cache
	backend       Backend
	bootstrap     func(ctx context.Context) (model.Records, error)
	hasCredential bool
	now           func() time.Time
}

// New returns an empty store.
func New(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		records:       model.Records{},
		cache:         opts.Cache,
		backend:       opts.Backend,
		bootstrap:     opts.Bootstrap,
		hasCredential: opts.HasCredential,
		now:           now,
	}
}

// Get returns the record for date.
func (s *Store) Get(date string) (model.DayRecord, bool) {
	return s.records.Get(date)
}

// Len returns the number of stored records, including level-0 ones.
func (s *Store) Len() int {
	return len(s.records)
}

// Snapshot returns a copy for read-only consumers such as grid and stats.
func (s *Store) Snapshot() model.Records {
	return s.records.Clone()
}

// Upsert replaces or inserts the record for rec.Date and stamps UpdatedAt
// with the current time. It returns the stored record.
func (s *Store) Upsert(rec model.DayRecord) (model.DayRecord, error) {
	if _, err := timecalc.ParseDateKey(rec.Date, time.UTC); err != nil {
		return model.DayRecord{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	rec = s.stamp(rec)
	s.records[rec.Date] = rec
	return rec, nil
}

func (s *Store) stamp(rec model.DayRecord) model.DayRecord {
	rec.UpdatedAt = s.now().UTC().Format(UpdatedAtLayout)
	return rec
}

// PersistLocally writes the full mapping to the local cache. Failures are
// logged and swallowed; the in-memory store stays authoritative.
func (s *Store) PersistLocally(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := storage.SaveRecords(ctx, s.cache, s.records); err != nil {
		logger.Warn("persisting local cache failed", "records", len(s.records), "error", err)
	}
}

// Validate checks the fields a save requires.
func Validate(rec model.DayRecord) error {
	if _, err := timecalc.ParseDateKey(rec.Date, time.UTC); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(rec.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !rec.Level.Valid() {
		return fmt.Errorf("%w: level %d out of range 0..%d", ErrValidation, rec.Level, model.MaxLevel)
	}
	return nil
}

// Save is the write path used by the presentation layer: validate, check
// the credential, write to the remote backend if one is configured, then
// upsert locally and persist the cache. A remote failure returns a
// *SaveError and leaves the store unchanged.
func (s *Store) Save(ctx context.Context, rec model.DayRecord) (model.DayRecord, error) {
	if err := Validate(rec); err != nil {
		return model.DayRecord{}, err
	}
	if s.backend != nil && s.backend.RequiresCredential() && !s.hasCredential {
		return model.DayRecord{}, ErrCredentialMissing
	}

	rec = s.stamp(rec)
	if s.backend != nil {
		if err := s.backend.Save(ctx, rec); err != nil {
			logger.Error("remote save failed", "backend", s.backend.Name(), "date", rec.Date, "error", err)
			return model.DayRecord{}, &SaveError{Backend: s.backend.Name(), Date: rec.Date, Err: err}
		}
	}

	s.records[rec.Date] = rec
	s.PersistLocally(ctx)
	return rec, nil
}

// Refresh re-reads one day from a backend that can fetch single records and
// replaces the local copy. A day the backend no longer has is dropped. With
// no such backend the local record is returned unchanged.
func (s *Store) Refresh(ctx context.Context, date string) (model.DayRecord, bool, error) {
	if _, err := timecalc.ParseDateKey(date, time.UTC); err != nil {
		return model.DayRecord{}, false, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	f, ok := s.backend.(RecordFetcher)
	if !ok {
		rec, found := s.Get(date)
		return rec, found, nil
	}

	rec, found, err := f.FetchOne(ctx, date)
	if err != nil {
		return model.DayRecord{}, false, err
	}
	if found {
		s.records[date] = rec
	} else {
		delete(s.records, date)
	}
	s.PersistLocally(ctx)
	return rec, found, nil
}
