package lifecycle

import (
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
)

type Event string

const (
	EventCreate         Event = "create"
	EventAccept         Event = "accept"
	EventReject         Event = "reject"
	EventStartJourney   Event = "startJourney"
	EventMarkArrived    Event = "markArrived"
	EventStartWork      Event = "startWork"
	EventComplete       Event = "complete"
	EventConfirmPayment Event = "confirmPayment"
	EventRate           Event = "rate"
	EventCancel         Event = "cancel"
)

// Transition is one row of the lifecycle state machine. The table is
// the single source for guards, action matrices and tests.
type Transition struct {
	From  models.RequestStatus
	Event Event
	To    models.RequestStatus
	Actor models.Role
}

// transitions encodes the server-authoritative lifecycle. Reject keeps
// the request pending so it can be reassigned; cancel is reachable from
// every non-terminal pre-work status; confirmPayment and rate keep the
// request completed and only touch payment status and rating.
var transitions = []Transition{
	{From: "", Event: EventCreate, To: models.RequestStatusPending, Actor: models.RoleUser},

	{From: models.RequestStatusPending, Event: EventAccept, To: models.RequestStatusAccepted, Actor: models.RoleMechanic},
	{From: models.RequestStatusPending, Event: EventReject, To: models.RequestStatusPending, Actor: models.RoleMechanic},

	{From: models.RequestStatusAccepted, Event: EventStartJourney, To: models.RequestStatusEnRoute, Actor: models.RoleMechanic},
	{From: models.RequestStatusEnRoute, Event: EventMarkArrived, To: models.RequestStatusArrived, Actor: models.RoleMechanic},
	{From: models.RequestStatusArrived, Event: EventStartWork, To: models.RequestStatusWorking, Actor: models.RoleMechanic},
	{From: models.RequestStatusWorking, Event: EventComplete, To: models.RequestStatusCompleted, Actor: models.RoleMechanic},

	{From: models.RequestStatusCompleted, Event: EventConfirmPayment, To: models.RequestStatusCompleted, Actor: models.RoleUser},
	{From: models.RequestStatusCompleted, Event: EventConfirmPayment, To: models.RequestStatusCompleted, Actor: models.RoleAdmin},
	{From: models.RequestStatusCompleted, Event: EventRate, To: models.RequestStatusCompleted, Actor: models.RoleUser},

	{From: models.RequestStatusPending, Event: EventCancel, To: models.RequestStatusCancelled, Actor: models.RoleUser},
	{From: models.RequestStatusAccepted, Event: EventCancel, To: models.RequestStatusCancelled, Actor: models.RoleUser},
	{From: models.RequestStatusEnRoute, Event: EventCancel, To: models.RequestStatusCancelled, Actor: models.RoleUser},
}

// Next resolves the target status for an event in the given status,
// regardless of actor.
func Next(from models.RequestStatus, event Event) (models.RequestStatus, bool) {
	for _, t := range transitions {
		if t.From == from && t.Event == event {
			return t.To, true
		}
	}
	return "", false
}

// Can reports whether the role may fire the event in the given status.
func Can(from models.RequestStatus, event Event, role models.Role) bool {
	for _, t := range transitions {
		if t.From == from && t.Event == event && t.Actor == role {
			return true
		}
	}
	return false
}

// ActionsFor derives the role x status action matrix; it gates buttons
// and refuses impossible actions before any network call.
func ActionsFor(role models.Role, status models.RequestStatus) []Event {
	var actions []Event
	seen := make(map[Event]bool)
	for _, t := range transitions {
		if t.From == status && t.Actor == role && !seen[t.Event] {
			actions = append(actions, t.Event)
			seen[t.Event] = true
		}
	}
	return actions
}

// ValidSequence checks that a recorded status history is a path in the
// machine: monotonic ranks, cancellation only from non-terminal states.
func ValidSequence(history []models.RequestStatus) bool {
	for i := 1; i < len(history); i++ {
		prev, next := history[i-1], history[i]
		if prev.Terminal() {
			return false
		}
		if next == models.RequestStatusCancelled {
			if prev.Rank() > models.RequestStatusEnRoute.Rank() {
				return false
			}
			continue
		}
		if next.Rank() <= prev.Rank() {
			return false
		}
	}
	return true
}
