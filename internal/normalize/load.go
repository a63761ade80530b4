package normalize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"elt/internal/config"
	"elt/internal/datasource"
	"elt/internal/parser"
	"elt/pkg/records"
)

var (
	// ErrSourceUnavailable is returned when a required raw stream cannot be
	// read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMissingReference is returned when the state→region table is absent
	// or has no usable rows.
	ErrMissingReference = errors.New("state region reference missing")
)

// optional streams may be absent from a snapshot. Their consumers degrade to
// documented defaults (payment fallback, null review key, untranslated
// category).
var optional = map[string]bool{
	config.EntityPayments:            true,
	config.EntityReviews:             true,
	config.EntityCategoryTranslation: true,
}

// Reader returns the raw records of one entity stream plus the number of rows
// the parser skipped.
type Reader interface {
	Read(ctx context.Context, entity string) ([]records.Record, int, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, entity string) ([]records.Record, int, error)

func (f ReaderFunc) Read(ctx context.Context, entity string) ([]records.Record, int, error) {
	return f(ctx, entity)
}

// StoreReader reads entity streams from a datasource store, picking the
// parser from each object's extension.
type StoreReader struct {
	Store  datasource.Store
	Source config.Source
	Parser config.Parser
	Logger *zap.Logger
}

func (s StoreReader) Read(ctx context.Context, entity string) ([]records.Record, int, error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	name := s.Source.File(entity)
	p, err := parser.ForFile(s.Parser, name, log.With(zap.String("entity", entity)))
	if err != nil {
		return nil, 0, err
	}
	rc, err := s.Store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()
	return p.Parse(rc)
}

// Load reads every entity stream concurrently and normalizes it. A missing
// optional stream is logged and treated as empty; any other read failure is
// fatal and wraps ErrSourceUnavailable (or ErrMissingReference for the
// state→region table).
func Load(ctx context.Context, rd Reader, log *zap.Logger) (*Snapshot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	snap := &Snapshot{}
	stats := make([]SourceStats, len(config.Entities))

	g, gctx := errgroup.WithContext(ctx)
	for i, entity := range config.Entities {
		g.Go(func() error {
			recs, skipped, err := rd.Read(gctx, entity)
			if err != nil {
				switch {
				case entity == config.EntityStateRegion:
					return fmt.Errorf("%s: %w: %w", entity, ErrMissingReference, err)
				case optional[entity] && errors.Is(err, fs.ErrNotExist):
					log.Warn("optional source absent; continuing without it", zap.String("entity", entity), zap.Error(err))
					return nil
				default:
					return fmt.Errorf("%s: %w: %w", entity, ErrSourceUnavailable, err)
				}
			}
			kept, dropped := snap.normalize(entity, recs)
			stats[i] = SourceStats{Read: len(recs), Kept: kept, Dropped: dropped, Skipped: skipped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Stats = make(Stats, len(stats))
	for i, entity := range config.Entities {
		snap.Stats[entity] = stats[i]
		log.Info("normalized source",
			zap.String("entity", entity),
			zap.Int("read", stats[i].Read),
			zap.Int("kept", stats[i].Kept),
			zap.Int("dropped", stats[i].Dropped),
			zap.Int("skipped", stats[i].Skipped),
		)
	}
	if len(snap.StateRegions) == 0 {
		return nil, fmt.Errorf("%s: %w: no usable rows", config.EntityStateRegion, ErrMissingReference)
	}
	return snap, nil
}

// normalize fills the snapshot field for entity. Each entity owns a distinct
// field, so concurrent calls for different entities do not race.
func (s *Snapshot) normalize(entity string, recs []records.Record) (kept, dropped int) {
	switch entity {
	case config.EntityCustomers:
		s.Customers, dropped = NormalizeCustomers(recs)
		kept = len(s.Customers)
	case config.EntityOrders:
		s.Orders, dropped = NormalizeOrders(recs)
		kept = len(s.Orders)
	case config.EntityOrderItems:
		s.OrderItems, dropped = NormalizeOrderItems(recs)
		kept = len(s.OrderItems)
	case config.EntityPayments:
		s.Payments, dropped = NormalizePayments(recs)
		kept = len(s.Payments)
	case config.EntityReviews:
		s.Reviews, dropped = NormalizeReviews(recs)
		kept = len(s.Reviews)
	case config.EntityProducts:
		s.Products, dropped = NormalizeProducts(recs)
		kept = len(s.Products)
	case config.EntitySellers:
		s.Sellers, dropped = NormalizeSellers(recs)
		kept = len(s.Sellers)
	case config.EntityCategoryTranslation:
		s.Translations, dropped = NormalizeCategoryTranslations(recs)
		kept = len(s.Translations)
	case config.EntityStateRegion:
		s.StateRegions, dropped = NormalizeStateRegions(recs)
		kept = len(s.StateRegions)
	}
	return kept, dropped
}
