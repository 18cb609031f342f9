package invoicing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerSyncer pushes a customer snapshot into the customer's draft documents
type CustomerSyncer interface {
	SyncCustomer(ctx context.Context, tenantID, customerID uuid.UUID, snapshot partner.CustomerSnapshot, updatedBy string) (int, error)
}

// CustomerUpdatedHandler handles CustomerUpdatedEvent by syncing the
// customer's draft documents. A document that failed inline because it
// lost a version race is picked up again here.
type CustomerUpdatedHandler struct {
	syncer CustomerSyncer
	logger *zap.Logger
}

// NewCustomerUpdatedHandler creates a new handler for customer updated events
func NewCustomerUpdatedHandler(syncer CustomerSyncer, logger *zap.Logger) *CustomerUpdatedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerUpdatedHandler{syncer: syncer, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CustomerUpdatedHandler) EventTypes() []string {
	return []string{partner.EventTypeCustomerUpdated}
}

// Handle processes a CustomerUpdatedEvent
func (h *CustomerUpdatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	updatedEvent, ok := event.(*partner.CustomerUpdatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			partner.EventTypeCustomerUpdated, event.EventType())
	}

	updated, err := h.syncer.SyncCustomer(ctx, updatedEvent.TenantID(), updatedEvent.CustomerID, updatedEvent.Snapshot, updatedEvent.UpdatedBy)
	if updated > 0 {
		h.logger.Info("documents synced from customer event",
			zap.String("event_id", event.EventID().String()),
			zap.String("customer_id", updatedEvent.CustomerID.String()),
			zap.Int("documents_updated", updated),
		)
	}
	return err
}
