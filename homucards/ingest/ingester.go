package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/homucards/homucards/database/models"
	"github.com/ellavondegurechaff/homucards/homucards/database/repositories"
	"github.com/ellavondegurechaff/homucards/homucards/services"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Stats summarizes one ingestion run.
type Stats struct {
	Categories    int
	Series        int
	Cards         int
	SkippedSeries int
}

// Ingester walks an asset store and mirrors it into the catalog tables:
// one series per directory, one card per image file. Runs are idempotent,
// so it executes on every startup before the gateway opens.
type Ingester struct {
	store      services.AssetStore
	seriesRepo repositories.SeriesRepository
	cardRepo   repositories.CardRepository
	workers    int
}

func New(store services.AssetStore, seriesRepo repositories.SeriesRepository, cardRepo repositories.CardRepository, workers int) *Ingester {
	if workers < 1 {
		workers = 4
	}
	return &Ingester{
		store:      store,
		seriesRepo: seriesRepo,
		cardRepo:   cardRepo,
		workers:    workers,
	}
}

// Run ingests the whole asset tree. A series that fails to ingest is
// logged and skipped; the rest of the catalog still loads. Only listing
// the categories themselves is fatal.
func (ing *Ingester) Run(ctx context.Context) (*Stats, error) {
	categories, err := ing.store.Categories(ctx)
	if err != nil {
		return nil, err
	}

	var seriesCount, cardCount, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)

	for _, category := range categories {
		seriesNames, err := ing.store.Series(ctx, category)
		if err != nil {
			slog.Error("Failed to list series, skipping category",
				slog.String("type", "ingest"),
				slog.String("category", category),
				slog.Any("error", err))
			continue
		}

		for _, seriesName := range seriesNames {
			category, seriesName := category, seriesName
			g.Go(func() error {
				cards, err := ing.ingestSeries(gctx, category, seriesName)
				if err != nil {
					skipped.Add(1)
					slog.Error("Failed to ingest series, skipping",
						slog.String("type", "ingest"),
						slog.String("category", category),
						slog.String("series", seriesName),
						slog.Any("error", err))
					return nil
				}
				if cards > 0 {
					seriesCount.Add(1)
					cardCount.Add(int64(cards))
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Stats{
		Categories:    len(categories),
		Series:        int(seriesCount.Load()),
		Cards:         int(cardCount.Load()),
		SkippedSeries: int(skipped.Load()),
	}
	slog.Info("Catalog ingestion complete",
		slog.String("type", "ingest"),
		slog.Int("categories", stats.Categories),
		slog.Int("series", stats.Series),
		slog.Int("cards", stats.Cards),
		slog.Int("skipped_series", stats.SkippedSeries),
	)
	return stats, nil
}

func (ing *Ingester) ingestSeries(ctx context.Context, category, seriesName string) (int, error) {
	images, err := ing.store.Images(ctx, category, seriesName)
	if err != nil {
		return 0, err
	}

	var filenames []string
	for _, name := range images {
		if imageExtensions[strings.ToLower(filepath.Ext(name))] {
			filenames = append(filenames, name)
		}
	}
	if len(filenames) == 0 {
		return 0, nil
	}
	// Positions come from the lexicographic filename order, not directory
	// enumeration order, so every host produces the same catalog.
	sort.Strings(filenames)

	series, err := ing.seriesRepo.Ensure(ctx, seriesName, category)
	if err != nil {
		return 0, err
	}

	for i, filename := range filenames {
		card := &models.Card{
			SeriesID: series.ID,
			Name:     stem(filename),
			Filename: filename,
			Position: i + 1,
		}
		if err := ing.cardRepo.Ensure(ctx, card); err != nil {
			return 0, err
		}
	}
	return len(filenames), nil
}

// stem strips the extension: the card name is the bare file stem.
func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
