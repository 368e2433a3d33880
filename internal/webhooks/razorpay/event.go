package razorpay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event names delivered by the provider that the reconciler understands.
const (
	EventTransferProcessed = "transfer.processed"
	EventTransferFailed    = "transfer.failed"
	EventPayoutProcessed   = "payout.processed"
	EventPayoutFailed      = "payout.failed"
)

// Event is the reconciler's view of a provider webhook: the event name, the
// provider's delivery id for replay suppression, and the settlement entity it
// refers to.
type Event struct {
	ID            string
	Name          string
	EntityID      string
	FailureReason string
}

type entity struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  struct {
		Description string `json:"description"`
		Reason      string `json:"reason"`
	} `json:"error"`
}

type envelope struct {
	Event   string `json:"event"`
	Payload struct {
		Transfer struct {
			Entity entity `json:"entity"`
		} `json:"transfer"`
		Payout struct {
			Entity entity `json:"entity"`
		} `json:"payout"`
	} `json:"payload"`
}

// ParseEvent decodes a webhook body. eventID comes from the provider's
// delivery header and may be empty; the entity id then doubles as the replay
// key.
func ParseEvent(eventID string, body []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode webhook body: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("webhook body missing event name")
	}

	ent := env.Payload.Transfer.Entity
	if strings.HasPrefix(env.Event, "payout.") {
		ent = env.Payload.Payout.Entity
	}

	reason := ent.Error.Description
	if reason == "" {
		reason = ent.Error.Reason
	}

	event := &Event{
		ID:            eventID,
		Name:          env.Event,
		EntityID:      ent.ID,
		FailureReason: reason,
	}
	if event.ID == "" {
		event.ID = env.Event + ":" + ent.ID
	}
	return event, nil
}

// Handled reports whether the reconciler acts on the event name.
func Handled(name string) bool {
	switch name {
	case EventTransferProcessed, EventTransferFailed, EventPayoutProcessed, EventPayoutFailed:
		return true
	}
	return false
}

func isFailure(name string) bool {
	return name == EventTransferFailed || name == EventPayoutFailed
}
