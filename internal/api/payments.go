package api

import (
	"context"
	"net/http"

	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
)

type PaymentService struct {
	client *Client
}

type CreatePaymentInput struct {
	RequestID      string               `json:"request_id" validate:"required"`
	Amount         float64              `json:"amount" validate:"required,gt=0"`
	Method         models.PaymentMethod `json:"method" validate:"required"`
	TransactionID  string               `json:"transaction_id" validate:"required"`
	CommissionRate float64              `json:"commission_rate" validate:"min=0,max=1"`
}

func (s *PaymentService) Create(ctx context.Context, input *CreatePaymentInput) (*models.Payment, error) {
	var out models.Payment
	if _, err := s.client.do(ctx, http.MethodPost, "/payment", nil, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	var out models.Payment
	if _, err := s.client.do(ctx, http.MethodGet, "/payment/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InvoicePDF fetches the invoice for a payment as an opaque blob.
func (s *PaymentService) InvoicePDF(ctx context.Context, id string) ([]byte, string, error) {
	return s.client.doBlob(ctx, "/payment/"+id+"/invoice", nil)
}

func (s *PaymentService) UserHistory(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (Paged[models.Payment], error) {
	var items []models.Payment
	envelope, err := s.client.do(ctx, http.MethodGet, "/payment/user/history", pagedQuery(page, filter), nil, &items)
	if err != nil {
		return Paged[models.Payment]{}, err
	}
	return pagedResult(envelope, items), nil
}

func (s *PaymentService) MechanicHistory(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (Paged[models.Payment], error) {
	var items []models.Payment
	envelope, err := s.client.do(ctx, http.MethodGet, "/payment/mechanic/history", pagedQuery(page, filter), nil, &items)
	if err != nil {
		return Paged[models.Payment]{}, err
	}
	return pagedResult(envelope, items), nil
}

// Verify looks a payment up by its transaction id.
func (s *PaymentService) Verify(ctx context.Context, transactionID string) (*models.Payment, error) {
	var out models.Payment
	if _, err := s.client.do(ctx, http.MethodGet, "/payment/verify/"+transactionID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PaymentService) Stats(ctx context.Context) (*models.PaymentStats, error) {
	var out models.PaymentStats
	if _, err := s.client.do(ctx, http.MethodGet, "/payment/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
