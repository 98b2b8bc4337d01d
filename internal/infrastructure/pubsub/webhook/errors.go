package webhookpubsub

import "errors"

var (
	// ErrInvalidTopic is returned whenever attempting to subscribe to an
	// unknown topic.
	ErrInvalidTopic = errors.New("topic is invalid")
	// ErrInvalidEndpoint is returned when the webhook endpoint is not a
	// valid URI.
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid URI")
	// ErrWebhookNotFound is returned when unsubscribing an unknown webhook.
	ErrWebhookNotFound = errors.New("webhook not found")
)
