package records_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/records"
	"github.com/Tiliavir/heatlog/internal/remote"
	"github.com/Tiliavir/heatlog/internal/storage"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeBackend struct {
	name      string
	records   model.Records
	fetchErr  error
	saveErr   error
	needsCred bool
	saved     []model.DayRecord
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) FetchAll(context.Context) (model.Records, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records.Clone(), nil
}

func (f *fakeBackend) Save(_ context.Context, rec model.DayRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeBackend) RequiresCredential() bool { return f.needsCred }

// failingCache accepts reads of nothing and rejects every write.
type failingCache struct{}

func (failingCache) Get(context.Context, storage.Slot) (string, bool, error) { return "", false, nil }
func (failingCache) Set(context.Context, storage.Slot, string) error {
	return errors.New("quota exceeded")
}
func (failingCache) Delete(context.Context, storage.Slot) error { return nil }
func (failingCache) Close() error                               { return nil }

func bootstrapOf(rs model.Records, err error) func(context.Context) (model.Records, error) {
	return func(context.Context) (model.Records, error) { return rs, err }
}

func TestLoadPrefersRemoteAndPersists(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewFileCache(t.TempDir())
	require.NoError(t, storage.SaveRecords(ctx, cache, model.Records{
		"2025-12-31": {Date: "2025-12-31", Title: "stale", Level: 1},
	}))
	backend := &fakeBackend{name: "spreadsheet", records: model.Records{
		"2026-01-01": {Date: "2026-01-01", Title: "Run", Level: 3},
	}}

	s := records.New(records.Options{Cache: cache, Backend: backend, Now: clock})
	report := s.Load(ctx)

	assert.Equal(t, "spreadsheet", report.Source)
	require.Len(t, report.Attempts, 1)
	assert.Equal(t, records.OutcomeData, report.Attempts[0].Outcome)
	_, ok := s.Get("2025-12-31")
	assert.False(t, ok, "remote result replaces the store entirely")

	cached, ok, err := storage.LoadRecords(ctx, cache)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Run", cached["2026-01-01"].Title)
}

func TestLoadRemoteEmptyIsFinal(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewFileCache(t.TempDir())
	require.NoError(t, storage.SaveRecords(ctx, cache, model.Records{
		"2025-12-31": {Date: "2025-12-31", Title: "old", Level: 1},
	}))

	s := records.New(records.Options{Cache: cache, Backend: &fakeBackend{name: "docstore", records: model.Records{}}})
	report := s.Load(ctx)
	assert.Equal(t, "docstore", report.Source)
	assert.Equal(t, 0, s.Len())
}

func TestLoadFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewFileCache(t.TempDir())
	require.NoError(t, storage.SaveRecords(ctx, cache, model.Records{
		"2026-01-01": {Date: "2026-01-01", Title: "cached", Level: 2},
	}))
	backend := &fakeBackend{name: "spreadsheet", fetchErr: &remote.NetworkError{Op: "GET", URL: "x", Status: 502}}
	bootstrapCalled := false

	s := records.New(records.Options{
		Cache:   cache,
		Backend: backend,
		Bootstrap: func(context.Context) (model.Records, error) {
			bootstrapCalled = true
			return nil, nil
		},
	})
	report := s.Load(ctx)

	assert.Equal(t, "cache", report.Source)
	require.Len(t, report.Attempts, 2)
	assert.Equal(t, records.OutcomeFailed, report.Attempts[0].Outcome)
	assert.Equal(t, "cached", s.Snapshot()["2026-01-01"].Title)
	assert.False(t, bootstrapCalled)
}

func TestLoadEmptyCacheFallsThroughToBootstrap(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewFileCache(t.TempDir())
	require.NoError(t, storage.SaveRecords(ctx, cache, model.Records{}))

	s := records.New(records.Options{
		Cache:     cache,
		Bootstrap: bootstrapOf(model.Records{"2026-01-01": {Date: "2026-01-01", Title: "boot", Level: 1}}, nil),
	})
	report := s.Load(ctx)

	assert.Equal(t, "bootstrap", report.Source)
	require.Len(t, report.Attempts, 2)
	assert.Equal(t, records.OutcomeEmpty, report.Attempts[0].Outcome)
	assert.Equal(t, 1, s.Len())
}

func TestLoadBootstrapMayBeEmpty(t *testing.T) {
	s := records.New(records.Options{Bootstrap: bootstrapOf(model.Records{}, nil)})
	report := s.Load(context.Background())
	assert.Equal(t, "bootstrap", report.Source)
	assert.Equal(t, 0, s.Len())
}

func TestLoadNeverFails(t *testing.T) {
	// Unreachable remote, absent cache, 404 bootstrap.
	unreachable := httptest.NewServer(http.NotFoundHandler())
	unreachableURL := unreachable.URL
	unreachable.Close()

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	ctx := context.Background()
	sheet := remote.NewSpreadsheet(ctx, unreachableURL, "", time.UTC)
	s := records.New(records.Options{
		Cache:     storage.NewFileCache(filepath.Join(t.TempDir(), "absent")),
		Backend:   records.NewSpreadsheetBackend(sheet),
		Bootstrap: remote.NewStatic(notFound.URL + "/data.json").Fetch,
	})

	report := s.Load(ctx)
	assert.Empty(t, report.Source)
	require.Len(t, report.Attempts, 3)
	for _, a := range report.Attempts {
		assert.NotEqual(t, records.OutcomeData, a.Outcome, a.Source)
	}
	assert.NotNil(t, s.Snapshot())
	assert.Equal(t, 0, s.Len())
}

func TestUpsertReplacesWholeRecord(t *testing.T) {
	s := records.New(records.Options{Now: clock})
	_, err := s.Upsert(model.DayRecord{Date: "2026-01-01", Title: "a", Level: 2, Content: "long text"})
	require.NoError(t, err)

	got, err := s.Upsert(model.DayRecord{Date: "2026-01-01", Title: "b", Level: 1})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:00:00.000Z", got.UpdatedAt)

	rec, ok := s.Get("2026-01-01")
	require.True(t, ok)
	assert.Equal(t, "b", rec.Title)
	assert.Empty(t, rec.Content, "no partial-field merge")
	assert.Equal(t, 1, s.Len())

	_, err = s.Upsert(model.DayRecord{Date: "01/01/2026", Title: "x"})
	assert.ErrorIs(t, err, records.ErrValidation)
}

func TestUpsertIdempotentExceptTimestamp(t *testing.T) {
	tick := fixedNow
	s := records.New(records.Options{Now: func() time.Time { tick = tick.Add(time.Second); return tick }})
	in := model.DayRecord{Date: "2026-01-01", Title: "a", Level: 2, Content: "c"}

	first, err := s.Upsert(in)
	require.NoError(t, err)
	second, err := s.Upsert(in)
	require.NoError(t, err)

	assert.NotEqual(t, first.UpdatedAt, second.UpdatedAt)
	first.UpdatedAt, second.UpdatedAt = "", ""
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.Len())
}

func TestUpsertThenReloadFromCache(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewFileCache(t.TempDir())
	s := records.New(records.Options{Cache: cache, Now: clock})

	in := model.DayRecord{Date: "2026-02-14", Title: "Write", Level: 4, Content: "# notes", UpdatedAt: "before"}
	stored, err := s.Upsert(in)
	require.NoError(t, err)
	s.PersistLocally(ctx)

	reloaded := records.New(records.Options{Cache: cache})
	report := reloaded.Load(ctx)
	require.Equal(t, "cache", report.Source)

	got, ok := reloaded.Get("2026-02-14")
	require.True(t, ok)
	assert.Equal(t, stored, got)
	assert.NotEqual(t, in.UpdatedAt, got.UpdatedAt)
	in.UpdatedAt, got.UpdatedAt = "", ""
	assert.Equal(t, in, got)
}

func TestPersistLocallySwallowsFailure(t *testing.T) {
	s := records.New(records.Options{Cache: failingCache{}, Now: clock})
	_, err := s.Save(context.Background(), model.DayRecord{Date: "2026-01-01", Title: "ok", Level: 1})
	require.NoError(t, err)
	_, ok := s.Get("2026-01-01")
	assert.True(t, ok, "in-memory store stays authoritative")
}

func TestSaveValidation(t *testing.T) {
	backend := &fakeBackend{name: "spreadsheet"}
	s := records.New(records.Options{Backend: backend})

	tests := []model.DayRecord{
		{Date: "2026-01-01", Title: "  ", Level: 1},
		{Date: "2026-01-01", Title: "x", Level: 5},
		{Date: "2026-01-01", Title: "x", Level: -1},
		{Date: "", Title: "x", Level: 1},
	}
	for _, rec := range tests {
		_, err := s.Save(context.Background(), rec)
		assert.ErrorIs(t, err, records.ErrValidation, "%+v", rec)
	}
	assert.Empty(t, backend.saved, "no network call on validation failure")
}

func TestSaveCredentialMissing(t *testing.T) {
	backend := &fakeBackend{name: "docstore", needsCred: true}
	s := records.New(records.Options{Backend: backend})

	_, err := s.Save(context.Background(), model.DayRecord{Date: "2026-01-01", Title: "x", Level: 1})
	assert.ErrorIs(t, err, records.ErrCredentialMissing)
	assert.Empty(t, backend.saved)
	assert.Equal(t, 0, s.Len())
}

func TestSaveRemoteFailureLeavesStore(t *testing.T) {
	backend := &fakeBackend{name: "spreadsheet", saveErr: &remote.NetworkError{Op: "POST", URL: "x", Status: 500}}
	s := records.New(records.Options{Backend: backend})

	_, err := s.Save(context.Background(), model.DayRecord{Date: "2026-01-01", Title: "x", Level: 1})
	var se *records.SaveError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "spreadsheet", se.Backend)
	assert.Equal(t, 0, s.Len())
}

func TestSaveWritesRemoteThenLocal(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewFileCache(t.TempDir())
	backend := &fakeBackend{name: "spreadsheet"}
	s := records.New(records.Options{Cache: cache, Backend: backend, Now: clock})

	saved, err := s.Save(ctx, model.DayRecord{Date: "2026-01-01", Title: "x", Level: 2})
	require.NoError(t, err)
	require.Len(t, backend.saved, 1)
	assert.Equal(t, saved, backend.saved[0])

	cached, ok, err := storage.LoadRecords(ctx, cache)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved, cached["2026-01-01"])
}

// memDoc is an in-memory DocumentStore with a controllable version token.
type memDoc struct {
	records model.Records
	version string
	// beforePut simulates a concurrent writer between fetch and push.
	beforePut func(*memDoc)
}

func (m *memDoc) Fetch(context.Context) (remote.Document, error) {
	return remote.Document{Records: m.records.Clone(), Version: m.version}, nil
}

func (m *memDoc) Put(_ context.Context, rs model.Records, version, _ string) (string, error) {
	if m.beforePut != nil {
		m.beforePut(m)
		m.beforePut = nil
	}
	if version != m.version {
		return "", remote.ErrStaleVersion
	}
	m.records = rs.Clone()
	m.version += "+"
	return m.version, nil
}

func TestRemoteSaveReadModifyWrite(t *testing.T) {
	doc := &memDoc{
		records: model.Records{"2026-01-01": {Date: "2026-01-01", Title: "keep", Level: 1}},
		version: "v1",
	}
	err := records.RemoteSave(context.Background(), doc, model.DayRecord{Date: "2026-01-02", Title: "new", Level: 2})
	require.NoError(t, err)
	assert.Equal(t, "v1+", doc.version)
	assert.Len(t, doc.records, 2)
	assert.Equal(t, "keep", doc.records["2026-01-01"].Title)
}

func TestRemoteSaveStaleVersion(t *testing.T) {
	doc := &memDoc{
		records: model.Records{},
		version: "v1",
		beforePut: func(m *memDoc) {
			m.records["2026-01-05"] = model.DayRecord{Date: "2026-01-05", Title: "other writer", Level: 1}
			m.version = "v2"
		},
	}
	backend := records.NewDocStoreBackend(doc)
	s := records.New(records.Options{Backend: backend, HasCredential: true})

	_, err := s.Save(context.Background(), model.DayRecord{Date: "2026-01-02", Title: "mine", Level: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrStaleVersion)
	var se *records.SaveError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "v2", doc.version, "no retry after a stale push")
}

func TestLoadFromExplicitSources(t *testing.T) {
	s := records.New(records.Options{})
	report := s.LoadFrom(context.Background(), []records.Source{
		{Name: "broken"},
		{Name: "second", Fetch: bootstrapOf(model.Records{"2026-01-01": {Date: "2026-01-01", Title: "x", Level: 1}}, nil)},
	})
	assert.Equal(t, "second", report.Source)
	assert.Equal(t, records.OutcomeFailed, report.Attempts[0].Outcome)
}

func TestLoadSkipsBootstrapWithLevelOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"2026-01-01":{"title":"x","level":9},"2026-01-02":{"level":-3}}`), 0o600))

	s := records.New(records.Options{Bootstrap: remote.NewStatic(path).Fetch})
	report := s.Load(context.Background())

	assert.Empty(t, report.Source)
	require.Len(t, report.Attempts, 1)
	assert.Equal(t, records.OutcomeFailed, report.Attempts[0].Outcome)
	var pe *remote.ParseError
	assert.ErrorAs(t, report.Attempts[0].Err, &pe)
	assert.Equal(t, 0, s.Len())
}

func sheetServer(t *testing.T, data any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "get", r.URL.Query().Get("action"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRefreshReplacesLocalDay(t *testing.T) {
	ctx := context.Background()
	srv := sheetServer(t, map[string]any{"date": "2026-01-01", "title": "fresh", "level": 4, "content": ""})
	cache := storage.NewFileCache(t.TempDir())
	s := records.New(records.Options{
		Cache:   cache,
		Backend: records.NewSpreadsheetBackend(remote.NewSpreadsheet(ctx, srv.URL, "", time.UTC)),
	})
	s.LoadFrom(ctx, []records.Source{{Name: "seed", Fetch: bootstrapOf(model.Records{
		"2026-01-01": {Date: "2026-01-01", Title: "stale", Level: 1},
		"2026-01-02": {Date: "2026-01-02", Title: "other", Level: 2},
	}, nil)}})

	rec, ok, err := s.Refresh(ctx, "2026-01-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fresh", rec.Title)
	assert.Equal(t, model.Level4, s.Snapshot()["2026-01-01"].Level)
	assert.Equal(t, 2, s.Len())

	cached, _, err := storage.LoadRecords(ctx, cache)
	require.NoError(t, err)
	assert.Equal(t, "fresh", cached["2026-01-01"].Title)
}

func TestRefreshDropsDayMissingRemotely(t *testing.T) {
	ctx := context.Background()
	srv := sheetServer(t, nil)
	s := records.New(records.Options{
		Backend: records.NewSpreadsheetBackend(remote.NewSpreadsheet(ctx, srv.URL, "", time.UTC)),
	})
	s.LoadFrom(ctx, []records.Source{{Name: "seed", Fetch: bootstrapOf(model.Records{
		"2026-01-01": {Date: "2026-01-01", Title: "gone", Level: 1},
	}, nil)}})

	_, ok, err := s.Refresh(ctx, "2026-01-01")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestRefreshWithoutSingleDayBackend(t *testing.T) {
	doc := &memDoc{records: model.Records{}, version: "v1"}
	s := records.New(records.Options{Backend: records.NewDocStoreBackend(doc)})
	s.LoadFrom(context.Background(), []records.Source{{Name: "seed", Fetch: bootstrapOf(model.Records{
		"2026-01-01": {Date: "2026-01-01", Title: "local", Level: 1},
	}, nil)}})

	rec, ok, err := s.Refresh(context.Background(), "2026-01-01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "local", rec.Title)

	_, _, err = s.Refresh(context.Background(), "01/01/2026")
	assert.ErrorIs(t, err, records.ErrValidation)
}
