package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
)

type HistoryService struct {
	client *Client
}

func (s *HistoryService) UserHistory(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (Paged[models.HistoryItem], error) {
	var items []models.HistoryItem
	envelope, err := s.client.do(ctx, http.MethodGet, "/history/user", pagedQuery(page, filter), nil, &items)
	if err != nil {
		return Paged[models.HistoryItem]{}, err
	}
	return pagedResult(envelope, items), nil
}

// UserExport downloads the user's history as a CSV blob.
func (s *HistoryService) UserExport(ctx context.Context, filter *models.HistoryFilter) ([]byte, string, error) {
	query := pagedQuery(models.PageQuery{Page: 1, Limit: models.MaxPageSize}, filter)
	query.Set("format", "csv")
	query.Del("page")
	query.Del("limit")
	return s.client.doBlob(ctx, "/history/user/export", query)
}

func (s *HistoryService) UserRatings(ctx context.Context, page models.PageQuery) (Paged[models.RatingEntry], error) {
	var items []models.RatingEntry
	envelope, err := s.client.do(ctx, http.MethodGet, "/history/user/ratings", pagedQuery(page, nil), nil, &items)
	if err != nil {
		return Paged[models.RatingEntry]{}, err
	}
	return pagedResult(envelope, items), nil
}

func (s *HistoryService) UserAnalytics(ctx context.Context, period models.AnalyticsPeriod) (*models.Analytics, error) {
	query := url.Values{}
	query.Set("period", string(period))
	var out models.Analytics
	if _, err := s.client.do(ctx, http.MethodGet, "/history/user/analytics", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HistoryService) MechanicHistory(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (Paged[models.HistoryItem], error) {
	var items []models.HistoryItem
	envelope, err := s.client.do(ctx, http.MethodGet, "/history/mechanic", pagedQuery(page, filter), nil, &items)
	if err != nil {
		return Paged[models.HistoryItem]{}, err
	}
	return pagedResult(envelope, items), nil
}

func (s *HistoryService) MechanicSummary(ctx context.Context) (*models.MechanicSummary, error) {
	var out models.MechanicSummary
	if _, err := s.client.do(ctx, http.MethodGet, "/history/mechanic/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
