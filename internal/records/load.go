package records

import (
	"context"
	"errors"

	"github.com/Tiliavir/heatlog/internal/logger"
	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/storage"
)

// Outcome classifies one load attempt.
type Outcome string

const (
	OutcomeData   Outcome = "data"
	OutcomeEmpty  Outcome = "empty"
	OutcomeFailed Outcome = "failed"
)

// Source is one entry of the load priority list.
type Source struct {
	Name  string
	Fetch func(ctx context.Context) (model.Records, error)
	// AcceptEmpty makes an empty result final instead of falling through.
	AcceptEmpty bool
	// Persist copies an adopted result into the local cache.
	Persist bool
}

// Attempt records what happened when one Source was tried.
type Attempt struct {
	Source  string
	Outcome Outcome
	Count   int
	Err     error
}

// LoadReport describes a Load run. Source is the adopted source, or "" when
// every source failed and the store was left empty.
type LoadReport struct {
	Source   string
	Attempts []Attempt
}

// Sources returns the priority list for this store: remote backend, local
// cache (only when non-empty), then the bootstrap file.
func (s *Store) Sources() []Source {
	var out []Source
	if s.backend != nil {
		out = append(out, Source{
			Name:        s.backend.Name(),
			Fetch:       s.backend.FetchAll,
			AcceptEmpty: true,
			Persist:     true,
		})
	}
	if s.cache != nil {
		out = append(out, Source{
			Name: "cache",
			Fetch: func(ctx context.Context) (model.Records, error) {
				rs, _, err := storage.LoadRecords(ctx, s.cache)
				return rs, err
			},
		})
	}
	if s.bootstrap != nil {
		out = append(out, Source{
			Name:        "bootstrap",
			Fetch:       s.bootstrap,
			AcceptEmpty: true,
		})
	}
	return out
}

// Load populates the store from the first usable source. It never fails:
// when nothing is usable the store is an empty mapping.
func (s *Store) Load(ctx context.Context) LoadReport {
	return s.LoadFrom(ctx, s.Sources())
}

// LoadFrom runs an explicit priority list, moving to the next entry only on
// failure or on an empty result the source may not return.
func (s *Store) LoadFrom(ctx context.Context, sources []Source) LoadReport {
	var report LoadReport
	for _, src := range sources {
		rs, err := fetch(ctx, src)
		a := Attempt{Source: src.Name, Count: len(rs), Err: err}
		switch {
		case err != nil:
			a.Outcome = OutcomeFailed
			logger.Warn("load source failed, falling back", "source", src.Name, "error", err)
		case len(rs) == 0:
			a.Outcome = OutcomeEmpty
		default:
			a.Outcome = OutcomeData
		}
		report.Attempts = append(report.Attempts, a)

		if a.Outcome == OutcomeFailed || (a.Outcome == OutcomeEmpty && !src.AcceptEmpty) {
			continue
		}

		if rs == nil {
			rs = model.Records{}
		}
		s.records = rs
		report.Source = src.Name
		if src.Persist {
			s.PersistLocally(ctx)
		}
		logger.Info("records loaded", "source", src.Name, "count", len(rs))
		return report
	}

	s.records = model.Records{}
	logger.Warn("no usable record source, starting empty")
	return report
}

// fetch guards against a Source without a Fetch function.
func fetch(ctx context.Context, src Source) (model.Records, error) {
	if src.Fetch == nil {
		return nil, errors.New("source has no fetch function")
	}
	return src.Fetch(ctx)
}
