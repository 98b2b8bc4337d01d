package ports

// Topics published by the settlement engine.
const (
	TopicTradeSettled   = "trade_settled"
	TopicOrderCancelled = "order_cancelled"
)

// Subscription is the info of a client subscribed for a topic.
type Subscription interface {
	Topic() string
	Id() string
	NotifyAt() string
}

// SecurePubSub defines the methods of the publisher used to notify
// external consumers about settlement records and order lifecycle events.
type SecurePubSub interface {
	// Subscribe adds a new subscription for the requested topic, notified
	// at the given endpoint with payloads signed with the given secret.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id for a topic.
	Unsubscribe(topic, id string) error
	// ListSubscriptionsForTopic returns the subscriptions for a topic.
	ListSubscriptionsForTopic(topic string) []Subscription
	// Publish delivers the message to all clients subscribed for the topic.
	Publish(topic string, message string) error
}
