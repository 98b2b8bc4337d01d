package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sunridge-network/settled/internal/core/ports"
)

// SettlementEvent is the per-participant payload published when a
// settlement commits.
type SettlementEvent struct {
	OrderId        string `json:"order_id"`
	Account        string `json:"account"`
	Status         string `json:"status"`
	AssetSent      string `json:"asset_sent"`
	AmountSent     uint64 `json:"amount_sent"`
	AssetReceived  string `json:"asset_received"`
	AmountReceived uint64 `json:"amount_received"`
	Reference      string `json:"reference"`
}

// CancelEvent is the payload published when an order is cancelled.
type CancelEvent struct {
	OrderId        string `json:"order_id"`
	Account        string `json:"account"`
	AmountReleased uint64 `json:"amount_released"`
}

// Service wraps the pubsub port with typed publish methods for the events
// emitted by the settlement engine.
type Service struct {
	pubsub ports.SecurePubSub
}

func NewService(pubsub ports.SecurePubSub) (*Service, error) {
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub")
	}
	return &Service{pubsub}, nil
}

func (s *Service) SecurePubSub() ports.SecurePubSub {
	return s.pubsub
}

func (s *Service) AddWebhook(
	_ context.Context, topic, endpoint, secret string,
) (string, error) {
	if topic != ports.TopicTradeSettled && topic != ports.TopicOrderCancelled {
		return "", fmt.Errorf("invalid webhook topic")
	}
	return s.pubsub.Subscribe(topic, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, topic, id string) error {
	return s.pubsub.Unsubscribe(topic, id)
}

func (s *Service) ListWebhooks(
	_ context.Context, topic string,
) []ports.Subscription {
	return s.pubsub.ListSubscriptionsForTopic(topic)
}

func (s *Service) PublishTradeSettledEvent(events []SettlementEvent) error {
	payload := map[string]interface{}{
		"event":       ports.TopicTradeSettled,
		"settlements": events,
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(ports.TopicTradeSettled, string(message))
}

func (s *Service) PublishOrderCancelledEvent(event CancelEvent) error {
	payload := map[string]interface{}{
		"event": ports.TopicOrderCancelled,
		"order": event,
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(ports.TopicOrderCancelled, string(message))
}
