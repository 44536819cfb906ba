package models

import "time"

type AnalyticsPeriod string

const (
	Period1Month   AnalyticsPeriod = "1month"
	Period3Months  AnalyticsPeriod = "3months"
	Period6Months  AnalyticsPeriod = "6months"
	Period12Months AnalyticsPeriod = "12months"
)

func (p AnalyticsPeriod) Valid() bool {
	switch p {
	case Period1Month, Period3Months, Period6Months, Period12Months:
		return true
	}
	return false
}

// HistoryItem is a ServiceRequest projected with the counterpart's
// display fields for listings.
type HistoryItem struct {
	ServiceRequest
	MechanicName  string `json:"mechanic_name,omitempty"`
	MechanicPhone string `json:"mechanic_phone,omitempty"`
	UserName      string `json:"user_name,omitempty"`
	UserPhone     string `json:"user_phone,omitempty"`
	PaymentID     string `json:"payment_id,omitempty"`
}

type HistoryFilter struct {
	Status    RequestStatus `json:"status,omitempty"`
	Method    PaymentMethod `json:"method,omitempty"`
	StartDate string        `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   string        `json:"end_date,omitempty"`
	MinAmount *float64      `json:"min_amount,omitempty"`
	MaxAmount *float64      `json:"max_amount,omitempty"`
}

type RatingEntry struct {
	RequestID    string    `json:"request_id"`
	MechanicName string    `json:"mechanic_name"`
	Rating       float64   `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	RatedAt      time.Time `json:"rated_at"`
}

type SeriesPoint struct {
	Label    string  `json:"label"`
	Requests int     `json:"requests"`
	Spent    float64 `json:"spent"`
}

type Analytics struct {
	Period            AnalyticsPeriod `json:"period"`
	TotalRequests     int             `json:"total_requests"`
	CompletedRequests int             `json:"completed_requests"`
	CancelledRequests int             `json:"cancelled_requests"`
	TotalSpent        float64         `json:"total_spent"`
	AverageRating     float64         `json:"average_rating"`
	Series            []SeriesPoint   `json:"series"`
}

type MechanicStats struct {
	ActiveRequests    int     `json:"active_requests"`
	CompletedToday    int     `json:"completed_today"`
	CompletedTotal    int     `json:"completed_total"`
	EarningsToday     float64 `json:"earnings_today"`
	EarningsTotal     float64 `json:"earnings_total"`
	AverageRating     float64 `json:"average_rating"`
	PendingNearby     int     `json:"pending_nearby"`
	AcceptanceRate    float64 `json:"acceptance_rate"`
	CompletionMinutes float64 `json:"completion_minutes"`
}

type MechanicSummary struct {
	TotalJobs     int     `json:"total_jobs"`
	CompletedJobs int     `json:"completed_jobs"`
	CancelledJobs int     `json:"cancelled_jobs"`
	GrossEarnings float64 `json:"gross_earnings"`
	Commission    float64 `json:"commission"`
	NetEarnings   float64 `json:"net_earnings"`
	AverageRating float64 `json:"average_rating"`
}

type PaymentStats struct {
	TotalPayments int                       `json:"total_payments"`
	TotalAmount   float64                   `json:"total_amount"`
	ByMethod      map[PaymentMethod]float64 `json:"by_method"`
}
