package models

import "time"

type RequestStatus string
type VehicleType string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusEnRoute   RequestStatus = "en_route"
	RequestStatusArrived   RequestStatus = "arrived"
	RequestStatusWorking   RequestStatus = "working"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"

	VehicleTypeCar   VehicleType = "car"
	VehicleTypeTruck VehicleType = "truck"
	VehicleTypeBike  VehicleType = "bike"
	VehicleTypeCNG   VehicleType = "cng"
	VehicleTypeOther VehicleType = "other"
)

type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

type Rating struct {
	UserRating     *float64 `json:"user_rating,omitempty"`
	UserComment    string   `json:"user_comment,omitempty"`
	MechanicRating *float64 `json:"mechanic_rating,omitempty"`
}

type ServiceRequest struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	MechanicID     *string       `json:"mechanic_id,omitempty"`
	VehicleType    VehicleType   `json:"vehicle_type"`
	ProblemType    string        `json:"problem_type"`
	Description    string        `json:"description,omitempty"`
	PickupLocation Location      `json:"pickup_location"`
	Status         RequestStatus `json:"status"`
	EstimatedCost  float64       `json:"estimated_cost"`
	ActualCost     *float64      `json:"actual_cost,omitempty"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	Rating         Rating        `json:"rating"`
	CreatedAt      time.Time     `json:"created_at"`
	AcceptedAt     *time.Time    `json:"accepted_at,omitempty"`
	StartedAt      *time.Time    `json:"started_at,omitempty"`
	ArrivedAt      *time.Time    `json:"arrived_at,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusEnRoute,
		RequestStatusArrived, RequestStatusWorking, RequestStatusCompleted,
		RequestStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
// Completed requests still accept payment confirmation and rating, but
// never another status change.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// Rank orders the forward progression of the lifecycle. Cancelled sits
// outside the ordering; callers must special-case it.
func (s RequestStatus) Rank() int {
	switch s {
	case RequestStatusPending:
		return 0
	case RequestStatusAccepted:
		return 1
	case RequestStatusEnRoute:
		return 2
	case RequestStatusArrived:
		return 3
	case RequestStatusWorking:
		return 4
	case RequestStatusCompleted:
		return 5
	default:
		return -1
	}
}
