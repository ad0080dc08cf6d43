package records

import (
	"context"
	"fmt"

	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/remote"
)

// Backend is a remote record store that can be loaded from and saved to.
type Backend interface {
	Name() string
	FetchAll(ctx context.Context) (model.Records, error)
	// Save writes one complete record, UpdatedAt already assigned.
	Save(ctx context.Context, rec model.DayRecord) error
	// RequiresCredential reports whether Save needs a credential.
	RequiresCredential() bool
}

// RecordFetcher is implemented by backends that can read a single day.
type RecordFetcher interface {
	FetchOne(ctx context.Context, date string) (model.DayRecord, bool, error)
}

// DocumentStore is the read-modify-write surface of a versioned document.
type DocumentStore interface {
	Fetch(ctx context.Context) (remote.Document, error)
	Put(ctx context.Context, rs model.Records, version, message string) (string, error)
}

// RemoteSave fetches the current document and its version token, applies
// rec to it and pushes the result conditioned on the unchanged token. A
// concurrent writer makes the push fail with remote.ErrStaleVersion; there
// is no retry or re-merge.
func RemoteSave(ctx context.Context, doc DocumentStore, rec model.DayRecord) error {
	cur, err := doc.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching current document: %w", err)
	}
	next := cur.Records.Clone()
	next[rec.Date] = rec

	if _, err := doc.Put(ctx, next, cur.Version, "Update "+rec.Date); err != nil {
		return fmt.Errorf("pushing document: %w", err)
	}
	return nil
}

type spreadsheetBackend struct {
	s *remote.Spreadsheet
}

// NewSpreadsheetBackend adapts a spreadsheet client. The sheet upserts by
// date itself, so a save is a single POST.
func NewSpreadsheetBackend(s *remote.Spreadsheet) Backend {
	return spreadsheetBackend{s: s}
}

func (b spreadsheetBackend) Name() string { return "spreadsheet" }

func (b spreadsheetBackend) FetchAll(ctx context.Context) (model.Records, error) {
	return b.s.FetchAll(ctx)
}

func (b spreadsheetBackend) FetchOne(ctx context.Context, date string) (model.DayRecord, bool, error) {
	return b.s.FetchOne(ctx, date)
}

func (b spreadsheetBackend) Save(ctx context.Context, rec model.DayRecord) error {
	return b.s.Save(ctx, rec)
}

func (b spreadsheetBackend) RequiresCredential() bool { return false }

type docStoreBackend struct {
	d DocumentStore
}

// NewDocStoreBackend adapts a document store. Saves go through RemoteSave.
func NewDocStoreBackend(d DocumentStore) Backend {
	return docStoreBackend{d: d}
}

func (b docStoreBackend) Name() string { return "docstore" }

func (b docStoreBackend) FetchAll(ctx context.Context) (model.Records, error) {
	doc, err := b.d.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Records, nil
}

func (b docStoreBackend) Save(ctx context.Context, rec model.DayRecord) error {
	return RemoteSave(ctx, b.d, rec)
}

func (b docStoreBackend) RequiresCredential() bool { return true }
