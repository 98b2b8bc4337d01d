package webhookpubsub

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/sunridge-network/settled/internal/core/ports"
)

// TopicAll subscribes a webhook to every topic published by the engine.
const TopicAll = "*"

var validTopics = map[string]struct{}{
	ports.TopicTradeSettled:   {},
	ports.TopicOrderCancelled: {},
	TopicAll:                  {},
}

// Webhook is an endpoint registered to be notified about a topic. If a
// secret is set, notifications carry a JWT signed with it so the receiver
// can authenticate the caller.
type Webhook struct {
	ID       string
	Topic    string
	Endpoint string
	Secret   string
}

func NewWebhook(topic, endpoint, secret string) (*Webhook, error) {
	if _, ok := validTopics[topic]; !ok {
		return nil, ErrInvalidTopic
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, ErrInvalidEndpoint
	}
	id := uuid.New().String()
	return &Webhook{id, topic, endpoint, secret}, nil
}

func (h *Webhook) IsSecured() bool {
	return len(h.Secret) > 0
}

// subscription adapts a Webhook to the ports.Subscription interface.
type subscription struct {
	hook *Webhook
}

func (s subscription) Topic() string {
	return s.hook.Topic
}

func (s subscription) Id() string {
	return s.hook.ID
}

func (s subscription) NotifyAt() string {
	return s.hook.Endpoint
}
