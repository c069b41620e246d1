package badge

import (
	"context"
	"fmt"
	"time"

	"github.com/tendhq/tend/internal/event"
	"github.com/tendhq/tend/internal/metrics"
)

// EventHandler feeds ledger events into badge progress.
type EventHandler struct {
	service Service
}

// NewEventHandler creates a new badge event handler
func NewEventHandler(service Service) *EventHandler {
	return &EventHandler{service: service}
}

// Register subscribes the handler to relevant events
func (h *EventHandler) Register(bus event.Bus) {
	bus.Subscribe(event.TypeXPCredited, h.HandleXPCredited)
	bus.Subscribe(event.TypeXPRedeemed, h.HandleXPRedeemed)
}

// HandleXPCredited records a completed-task credit against badge progress
func (h *EventHandler) HandleXPCredited(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[event.XPCreditedPayloadV1](evt.Payload)
	if err != nil {
		metrics.EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		return fmt.Errorf("failed to decode xp credited payload: %w", err)
	}

	h.service.RecordCredit(ctx, payload.UserID, payload.Amount, time.Unix(payload.Timestamp, 0))
	return nil
}

// HandleXPRedeemed records a redemption against badge progress
func (h *EventHandler) HandleXPRedeemed(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[event.XPRedeemedPayloadV1](evt.Payload)
	if err != nil {
		metrics.EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		return fmt.Errorf("failed to decode xp redeemed payload: %w", err)
	}

	h.service.RecordRedemption(ctx, payload.UserID)
	return nil
}
