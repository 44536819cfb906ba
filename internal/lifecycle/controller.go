package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/internal/realtime"
	"github.com/Mushfiqur07/roadeside-sub002/internal/ui"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

// ActionInput carries the event-specific arguments.
type ActionInput struct {
	ActualCost float64
	Rating     float64
	Comment    string
	Reason     string
}

// Controller mirrors the server-authoritative request lifecycle. It
// owns the request cache: views read it, only the controller mutates
// it. Local transitions are validated against the machine before any
// network call; realtime pushes always win over optimistic state.
type Controller struct {
	requests  *api.RequestService
	principal func() *models.Principal
	notifier  ui.Notifier
	log       *logger.Logger

	mu    sync.RWMutex
	cache map[string]*models.ServiceRequest
	// loadSeq tags in-flight fetches per request so responses landing
	// out of order cannot overwrite fresher state.
	loadSeq map[string]uint64

	subID string
}

func NewController(requests *api.RequestService, principal func() *models.Principal, notifier ui.Notifier, log *logger.Logger) *Controller {
	return &Controller{
		requests:  requests,
		principal: principal,
		notifier:  notifier,
		log:       log.WithField("component", "lifecycle"),
		cache:     make(map[string]*models.ServiceRequest),
		loadSeq:   make(map[string]uint64),
	}
}

func (c *Controller) Get(id string) (*models.ServiceRequest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	req, ok := c.cache[id]
	if !ok {
		return nil, false
	}
	copied := *req
	return &copied, true
}

// Visible lists the cached requests, the set reconciled after a
// realtime reconnect.
func (c *Controller) Visible() []models.ServiceRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ServiceRequest, 0, len(c.cache))
	for _, req := range c.cache {
		out = append(out, *req)
	}
	return out
}

// Actions derives the allowed events for the current principal on the
// cached request.
func (c *Controller) Actions(id string) []Event {
	principal := c.principal()
	if principal == nil {
		return nil
	}
	req, ok := c.Get(id)
	if !ok {
		return nil
	}
	return ActionsFor(principal.Role, req.Status)
}

func (c *Controller) Create(ctx context.Context, input *api.CreateRequestInput) (*models.ServiceRequest, error) {
	principal := c.principal()
	if principal == nil || principal.Role != models.RoleUser {
		return nil, fmt.Errorf("only users can create requests")
	}

	req, err := c.requests.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	c.put(req)
	c.log.LogRequestEvent(req.ID, "created", map[string]interface{}{"status": req.Status})
	return req, nil
}

// Load fetches a request and caches it, discarding the response if a
// later Load for the same request was issued in the meantime.
func (c *Controller) Load(ctx context.Context, id string) (*models.ServiceRequest, error) {
	c.mu.Lock()
	c.loadSeq[id]++
	seq := c.loadSeq[id]
	c.mu.Unlock()

	req, err := c.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.loadSeq[id] != seq {
		c.mu.Unlock()
		stale := *req
		return &stale, nil
	}
	c.cache[id] = req
	c.mu.Unlock()

	copied := *req
	return &copied, nil
}

// Do validates the transition locally, applies it optimistically,
// issues the API call, and reverts on failure. Impossible actions are
// refused before any network traffic.
func (c *Controller) Do(ctx context.Context, id string, event Event, input ActionInput) (*models.ServiceRequest, error) {
	principal := c.principal()
	if principal == nil {
		return nil, fmt.Errorf("not authenticated")
	}

	prev, ok := c.Get(id)
	if !ok {
		loaded, err := c.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		prev = loaded
	}

	if !Can(prev.Status, event, principal.Role) {
		return nil, fmt.Errorf("action %s not allowed for %s request as %s", event, prev.Status, principal.Role)
	}

	if next, ok := Next(prev.Status, event); ok && next != prev.Status {
		optimistic := *prev
		optimistic.Status = next
		c.put(&optimistic)
	}

	req, err := c.dispatch(ctx, id, event, input)
	if err != nil {
		c.put(prev) // revert the optimistic update
		return nil, err
	}

	c.put(req)
	c.log.LogRequestEvent(id, string(event), map[string]interface{}{"status": req.Status})
	return req, nil
}

func (c *Controller) dispatch(ctx context.Context, id string, event Event, input ActionInput) (*models.ServiceRequest, error) {
	switch event {
	case EventAccept:
		return c.requests.Accept(ctx, id)
	case EventReject:
		return c.requests.Reject(ctx, id, input.Reason)
	case EventStartJourney:
		return c.requests.StartJourney(ctx, id)
	case EventMarkArrived:
		return c.requests.MarkArrived(ctx, id)
	case EventStartWork:
		return c.requests.UpdateStatus(ctx, id, models.RequestStatusWorking)
	case EventComplete:
		return c.requests.Complete(ctx, id, input.ActualCost)
	case EventConfirmPayment:
		return c.requests.ConfirmPayment(ctx, id)
	case EventRate:
		return c.requests.Rate(ctx, id, &api.RateRequestInput{Rating: input.Rating, Comment: input.Comment})
	case EventCancel:
		return c.requests.Cancel(ctx, id, input.Reason)
	default:
		return nil, fmt.Errorf("unknown action %s", event)
	}
}

// Attach subscribes the controller to the realtime channel; call once
// after Connect. Detach with the returned id via channel.Unsubscribe.
func (c *Controller) Attach(ctx context.Context, channel *realtime.Channel) string {
	id, events := channel.Subscribe(
		realtime.EventRequestStatusChanged,
		realtime.EventRequestAssigned,
	)
	c.subID = id

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				c.handle(ctx, event)
			}
		}
	}()

	return id
}

func (c *Controller) handle(ctx context.Context, event realtime.Event) {
	switch event.Type {
	case realtime.EventRequestStatusChanged:
		var payload realtime.StatusChangedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			c.log.WithError(err).Debug("Malformed status event")
			return
		}
		c.ApplyStatus(payload.RequestID, models.RequestStatus(payload.Status))

	case realtime.EventRequestAssigned:
		var payload realtime.AssignedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			c.log.WithError(err).Debug("Malformed assignment event")
			return
		}
		c.applyAssignment(payload)

	case realtime.EventReconnected:
		c.Reconcile(ctx)
	}
}

// ApplyStatus applies a server-pushed status. The server value wins
// over any optimistic local state; the only permitted downgrade is an
// explicit cancellation.
func (c *Controller) ApplyStatus(requestID string, status models.RequestStatus) {
	if !status.Valid() {
		c.log.WithField("status", status).Debug("Ignoring unknown pushed status")
		return
	}

	c.mu.Lock()
	req, ok := c.cache[requestID]
	if !ok {
		c.mu.Unlock()
		return
	}

	local := req.Status
	if status != models.RequestStatusCancelled && local != models.RequestStatusCancelled && status.Rank() < local.Rank() {
		c.mu.Unlock()
		c.log.WithFields(map[string]interface{}{
			"request_id": requestID,
			"local":      local,
			"pushed":     status,
		}).Debug("Ignoring status downgrade")
		return
	}

	req.Status = status
	c.mu.Unlock()

	if local != status {
		c.notifier.Info(fmt.Sprintf("Request %s is now %s", requestID, status))
		c.log.LogRequestEvent(requestID, "statusChanged", map[string]interface{}{
			"from": local,
			"to":   status,
		})
	}
}

func (c *Controller) applyAssignment(payload realtime.AssignedPayload) {
	c.mu.Lock()
	req, ok := c.cache[payload.RequestID]
	if ok {
		mechanicID := payload.MechanicID
		req.MechanicID = &mechanicID
	}
	c.mu.Unlock()

	if ok {
		c.notifier.Success(fmt.Sprintf("Mechanic %s accepted your request", payload.MechanicName))
	}
}

// Reconcile re-fetches every cached request after a reconnect; events
// missed while disconnected are folded in through fresh reads.
func (c *Controller) Reconcile(ctx context.Context) {
	for _, req := range c.Visible() {
		if req.Status.Terminal() {
			continue
		}
		if _, err := c.Load(ctx, req.ID); err != nil {
			c.log.WithError(err).WithField("request_id", req.ID).Warn("Reconcile fetch failed")
		}
	}
}

func (c *Controller) put(req *models.ServiceRequest) {
	copied := *req
	c.mu.Lock()
	c.cache[req.ID] = &copied
	c.mu.Unlock()
}
