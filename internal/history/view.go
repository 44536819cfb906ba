package history

import (
	"context"
	"sync"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

// State is a list snapshot: items, server pagination meta, and the
// loading/error flags views render from. Empty and loading states are
// first-class.
type State[T any] struct {
	Items      []T
	Pagination models.Pagination
	Loading    bool
	Err        error
}

type fetchFunc[T any] func(ctx context.Context, page models.PageQuery, filter *models.HistoryFilter) (api.Paged[T], error)

// ListView is a paginated, filtered list. Every Load is tagged with a
// monotonically increasing sequence number; a response that arrives
// after a newer Load was issued is discarded, so racing page flips
// always settle on the latest-requested page.
type ListView[T any] struct {
	fetch fetchFunc[T]
	log   *logger.Logger

	mu     sync.Mutex
	seq    uint64
	page   models.PageQuery
	filter *models.HistoryFilter
	state  State[T]
}

func NewListView[T any](fetch fetchFunc[T], log *logger.Logger) *ListView[T] {
	return &ListView[T]{
		fetch: fetch,
		log:   log,
		page:  models.PageQuery{Page: 1, Limit: models.DefaultPageSize},
	}
}

func (v *ListView[T]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SetFilter replaces the filter and resets to the first page.
func (v *ListView[T]) SetFilter(filter *models.HistoryFilter) {
	v.mu.Lock()
	v.filter = filter
	v.page.Page = 1
	v.mu.Unlock()
}

func (v *ListView[T]) SetPage(page int) {
	v.mu.Lock()
	if page < 1 {
		page = 1
	}
	v.page.Page = page
	v.mu.Unlock()
}

func (v *ListView[T]) SetLimit(limit int) {
	v.mu.Lock()
	v.page.Limit = limit
	v.page = v.page.Clamp()
	v.mu.Unlock()
}

// Load fetches the current page. A stale response (superseded by a
// later Load) leaves the state untouched.
func (v *ListView[T]) Load(ctx context.Context) (State[T], error) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	page := v.page
	filter := v.filter
	v.state.Loading = true
	v.mu.Unlock()

	result, err := v.fetch(ctx, page, filter)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seq != seq {
		// a newer load owns the state now
		return v.state, nil
	}

	v.state.Loading = false
	if err != nil {
		v.state.Err = err
		return v.state, err
	}

	v.state.Err = nil
	v.state.Items = result.Items
	v.state.Pagination = result.Pagination
	if !v.state.Pagination.Consistent() {
		v.log.WithFields(map[string]interface{}{
			"total": v.state.Pagination.Total,
			"pages": v.state.Pagination.Pages,
			"limit": v.state.Pagination.Limit,
		}).Debug("Server pagination meta inconsistent")
	}
	return v.state, nil
}

// Views groups the four lifecycle lists plus the export/invoice/
// analytics actions around one API client.
type Views struct {
	UserRequests     *ListView[models.HistoryItem]
	UserPayments     *ListView[models.Payment]
	MechanicRequests *ListView[models.HistoryItem]
	MechanicPayments *ListView[models.Payment]

	historyAPI  *api.HistoryService
	paymentsAPI *api.PaymentService
}

func NewViews(historyAPI *api.HistoryService, paymentsAPI *api.PaymentService, log *logger.Logger) *Views {
	log = log.WithField("component", "history")
	return &Views{
		UserRequests:     NewListView(historyAPI.UserHistory, log.WithField("list", "user_requests")),
		UserPayments:     NewListView(paymentsAPI.UserHistory, log.WithField("list", "user_payments")),
		MechanicRequests: NewListView(historyAPI.MechanicHistory, log.WithField("list", "mechanic_requests")),
		MechanicPayments: NewListView(paymentsAPI.MechanicHistory, log.WithField("list", "mechanic_payments")),
		historyAPI:       historyAPI,
		paymentsAPI:      paymentsAPI,
	}
}

// ExportCSV downloads the user's request history as an opaque CSV
// blob, honoring the current user-requests filter.
func (v *Views) ExportCSV(ctx context.Context) ([]byte, string, error) {
	v.UserRequests.mu.Lock()
	filter := v.UserRequests.filter
	v.UserRequests.mu.Unlock()
	return v.historyAPI.UserExport(ctx, filter)
}

// Invoice downloads a payment's invoice PDF.
func (v *Views) Invoice(ctx context.Context, paymentID string) ([]byte, string, error) {
	return v.paymentsAPI.InvoicePDF(ctx, paymentID)
}

func (v *Views) Analytics(ctx context.Context, period models.AnalyticsPeriod) (*models.Analytics, error) {
	if !period.Valid() {
		period = models.Period1Month
	}
	return v.historyAPI.UserAnalytics(ctx, period)
}

func (v *Views) Ratings(ctx context.Context, page models.PageQuery) (api.Paged[models.RatingEntry], error) {
	return v.historyAPI.UserRatings(ctx, page)
}

func (v *Views) MechanicSummary(ctx context.Context) (*models.MechanicSummary, error) {
	return v.historyAPI.MechanicSummary(ctx)
}
