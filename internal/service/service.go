// FILE: internal/service/service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/events"

	"github.com/google/uuid"
)

const (
	serviceModule      = "SERVICE"
	defaultCallTimeout = 30 * time.Second
)

func entityNotFound(err error) bool {
	return errors.Is(err, entity.ErrNotFound)
}

func inTransaction(ctx context.Context, uowFactory unitofwork.RepositoryFactory, write func(uow unitofwork.UnitOfWork) error) error {
	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()
	if err := write(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// notifier fans a freshly provisioned entity out to the summary consumer and
// the event stream. Both are best effort.
type notifier struct {
	publisherService IPublisherService
	eventPublisher   IEventPublisher
	logger           logger.ILogger
}

func (n notifier) summary(ctx context.Context, entityType string, id uuid.UUID) {
	if n.publisherService == nil {
		return
	}
	payload, err := json.Marshal(dto.PublishSummaryMessage{EntityType: entityType, EntityId: id})
	if err == nil {
		err = n.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		n.logger.Warn(serviceModule, "Failed to queue summary upload", map[string]interface{}{
			"entity_type": entityType, "entity_id": id.String(), "error": err.Error(),
		})
	}
}

func (n notifier) event(ctx context.Context, eventType string, data map[string]interface{}) {
	if n.eventPublisher == nil {
		return
	}
	if err := n.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
		n.logger.Warn(serviceModule, "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}
