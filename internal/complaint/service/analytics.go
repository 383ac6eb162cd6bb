package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"civiceye/internal/complaint/models"
)

// trendWindow is how far back the daily submission trend reaches.
const trendWindow = 7 * 24 * time.Hour

// Analytics assembles the authority dashboard summary: total volume, a count
// per status, and the last week's daily submission trend. The counts are
// independent store queries, so they run concurrently and the first failure
// cancels the rest.
func (s *Service) Analytics(ctx context.Context, typ models.Type) (models.AnalyticsSummary, error) {
	g, ctx := errgroup.WithContext(ctx)

	var total int
	g.Go(func() error {
		n, err := s.store.CountByStatus(ctx, typ, "")
		if err != nil {
			return err
		}
		total = n
		return nil
	})

	counts := make([]int, len(models.AllStatuses))
	for i, status := range models.AllStatuses {
		g.Go(func() error {
			n, err := s.store.CountByStatus(ctx, typ, status)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}

	var trend []models.DailyTrendItem
	g.Go(func() error {
		items, err := s.store.DailyTrend(ctx, typ, s.clock().Add(-trendWindow))
		if err != nil {
			return err
		}
		trend = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.AnalyticsSummary{}, translateStoreErr(err, "compute analytics")
	}

	byStatus := make(map[models.Status]int, len(models.AllStatuses))
	for i, status := range models.AllStatuses {
		byStatus[status] = counts[i]
	}
	if trend == nil {
		trend = []models.DailyTrendItem{}
	}
	return models.AnalyticsSummary{
		Total:      total,
		ByStatus:   byStatus,
		DailyTrend: trend,
	}, nil
}
