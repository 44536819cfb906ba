package api

import (
	"context"
	"net/http"

	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
)

type RequestService struct {
	client *Client
}

type CreateRequestInput struct {
	VehicleType    models.VehicleType `json:"vehicle_type" validate:"required"`
	ProblemType    string             `json:"problem_type" validate:"required,min=2,max=100"`
	Description    string             `json:"description" validate:"max=1000"`
	PickupLocation models.Location    `json:"pickup_location" validate:"required"`
	EstimatedCost  float64            `json:"estimated_cost" validate:"omitempty,gt=0"`
}

type RateRequestInput struct {
	Rating  float64 `json:"rating" validate:"required,min=1,max=5"`
	Comment string  `json:"comment" validate:"max=500"`
}

func (s *RequestService) Create(ctx context.Context, input *CreateRequestInput) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	if _, err := s.client.do(ctx, http.MethodPost, "/requests", nil, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RequestService) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	if _, err := s.client.do(ctx, http.MethodGet, "/requests/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RequestService) ListForUser(ctx context.Context, page models.PageQuery) (Paged[models.ServiceRequest], error) {
	var items []models.ServiceRequest
	envelope, err := s.client.do(ctx, http.MethodGet, "/requests/user/history", pagedQuery(page, nil), nil, &items)
	if err != nil {
		return Paged[models.ServiceRequest]{}, err
	}
	return pagedResult(envelope, items), nil
}

func (s *RequestService) ListForMechanic(ctx context.Context, mechanicID string, page models.PageQuery) (Paged[models.ServiceRequest], error) {
	var items []models.ServiceRequest
	envelope, err := s.client.do(ctx, http.MethodGet, "/requests/mechanic/"+mechanicID, pagedQuery(page, nil), nil, &items)
	if err != nil {
		return Paged[models.ServiceRequest]{}, err
	}
	return pagedResult(envelope, items), nil
}

func (s *RequestService) Accept(ctx context.Context, id string) (*models.ServiceRequest, error) {
	return s.transition(ctx, id, "accept", nil)
}

func (s *RequestService) Reject(ctx context.Context, id string, reason string) (*models.ServiceRequest, error) {
	body := map[string]string{"reason": reason}
	return s.transition(ctx, id, "reject", body)
}

func (s *RequestService) StartJourney(ctx context.Context, id string) (*models.ServiceRequest, error) {
	return s.transition(ctx, id, "start-journey", nil)
}

func (s *RequestService) MarkArrived(ctx context.Context, id string) (*models.ServiceRequest, error) {
	return s.transition(ctx, id, "arrived", nil)
}

func (s *RequestService) Complete(ctx context.Context, id string, actualCost float64) (*models.ServiceRequest, error) {
	body := map[string]float64{"actual_cost": actualCost}
	return s.transition(ctx, id, "complete", body)
}

// UpdateStatus drives the generic transition endpoint; the controller
// uses it for the arrived -> working step.
func (s *RequestService) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) (*models.ServiceRequest, error) {
	body := map[string]models.RequestStatus{"status": status}
	return s.transition(ctx, id, "status", body)
}

func (s *RequestService) ConfirmPayment(ctx context.Context, id string) (*models.ServiceRequest, error) {
	return s.transition(ctx, id, "payment-completed", nil)
}

func (s *RequestService) Rate(ctx context.Context, id string, input *RateRequestInput) (*models.ServiceRequest, error) {
	return s.transition(ctx, id, "rate", input)
}

func (s *RequestService) Cancel(ctx context.Context, id string, reason string) (*models.ServiceRequest, error) {
	body := map[string]string{"reason": reason}
	var out models.ServiceRequest
	if _, err := s.client.do(ctx, http.MethodPut, "/requests/"+id+"/cancel", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RequestService) MechanicStats(ctx context.Context) (*models.MechanicStats, error) {
	var out models.MechanicStats
	if _, err := s.client.do(ctx, http.MethodGet, "/requests/mechanic/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RequestService) transition(ctx context.Context, id, action string, body interface{}) (*models.ServiceRequest, error) {
	var out models.ServiceRequest
	if _, err := s.client.do(ctx, http.MethodPut, "/requests/"+id+"/"+action, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
