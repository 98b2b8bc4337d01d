package webhookpubsub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/sunridge-network/settled/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

type webhookService struct {
	store      *webhookStore
	httpClient *client
	cb         *gobreaker.CircuitBreaker
}

// NewWebhookPubSubService returns a SecurePubSub notifying subscribed
// endpoints with POST requests. Deliveries go through a circuit breaker
// so a consistently failing receiver stops being called for a while
// instead of slowing every settlement down.
func NewWebhookPubSubService(
	requestTimeout time.Duration, requestsPerSecond int,
) (ports.SecurePubSub, error) {
	if requestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive")
	}
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive")
	}

	return &webhookService{
		store:      newWebhookStore(),
		httpClient: newHTTPClient(requestTimeout, requestsPerSecond),
		cb:         newCircuitBreaker(),
	}, nil
}

func (ws *webhookService) Subscribe(topic, endpoint, secret string) (string, error) {
	hook, err := NewWebhook(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	ws.store.add(hook)
	return hook.ID, nil
}

func (ws *webhookService) Unsubscribe(_, id string) error {
	if !ws.store.remove(id) {
		return ErrWebhookNotFound
	}
	return nil
}

func (ws *webhookService) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	hooks := ws.store.listByTopic(topic)
	subs := make([]ports.Subscription, len(hooks))
	for i, h := range hooks {
		subs[i] = subscription{h}
	}
	return subs
}

// Publish makes a POST request to every webhook endpoint registered for
// the given topic. Failing endpoints do not prevent the others from being
// notified.
func (ws *webhookService) Publish(topic string, message string) error {
	if _, ok := validTopics[topic]; !ok {
		return ErrInvalidTopic
	}

	hooks := ws.store.listByTopic(topic)

	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		eg.Go(func() error { return ws.doRequest(hook, message) })
	}
	return eg.Wait()
}

func (ws *webhookService) doRequest(hook *Webhook, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if hook.IsSecured() {
			token := jwt.New(jwt.SigningMethodHS256)
			secret := []byte(hook.Secret)
			tokenString, _ := token.SignedString(secret)
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.post(hook.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("endpoint returned %d: %s", status, resp)
		}
		return nil, nil
	})

	return err
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "webhook",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 20 && failureRatio >= 0.7
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Warn("webhook receivers seem down, stop allowing requests")
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				log.Info("checking webhook receivers status")
			}
			if from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed {
				log.Info("webhook receivers seem ok, restart allowing requests")
			}
		},
	})
}
