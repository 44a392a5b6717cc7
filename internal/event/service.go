package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/minhvu/catalogue/internal/storage/mq"
)

// Service consumes catalogue events from the message queue.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := registerHandler(s.mqConsumer, TopicProductCreated, s.handleProductCreated); err != nil {
		return nil, err
	}
	if err := registerHandler(s.mqConsumer, TopicProductDeleted, s.handleProductDeleted); err != nil {
		return nil, err
	}
	if err := registerHandler(s.mqConsumer, TopicVariantDeleted, s.handleVariantDeleted); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func registerHandler[T any](consumer mq.Consumer, topic string, handle func(context.Context, T) error) error {
	if err := consumer.RegisterHandler(
		topic,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev T
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal %s event: %w", topic, err)
			}

			if err := handle(ctx, ev); err != nil {
				return fmt.Errorf("handle %s event: %w", topic, err)
			}

			return nil
		},
	); err != nil {
		return fmt.Errorf("register %s event handler: %w", topic, err)
	}

	return nil
}

func (s *Service) handleProductCreated(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.Int("variant_count", ev.VariantCount))
	return nil
}

func (s *Service) handleProductDeleted(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", ev.ProductID),
		slog.Time("deleted_at", ev.DeletedAt))
	return nil
}

func (s *Service) handleVariantDeleted(ctx context.Context, ev VariantDeletedEvent) error {
	s.logger.InfoContext(ctx, "variant deleted",
		slog.String("variant_id", ev.VariantID),
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku))
	return nil
}
