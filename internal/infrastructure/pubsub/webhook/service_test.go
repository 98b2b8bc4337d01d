package webhookpubsub_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sunridge-network/settled/internal/core/ports"
	webhookpubsub "github.com/sunridge-network/settled/internal/infrastructure/pubsub/webhook"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	pubsub := newTestService(t)

	id, err := pubsub.Subscribe(
		ports.TopicTradeSettled, "http://localhost:8888/hook", "secret",
	)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	subs := pubsub.ListSubscriptionsForTopic(ports.TopicTradeSettled)
	require.Len(t, subs, 1)
	require.Equal(t, id, subs[0].Id())
	require.Equal(t, ports.TopicTradeSettled, subs[0].Topic())
	require.Equal(t, "http://localhost:8888/hook", subs[0].NotifyAt())

	require.NoError(t, pubsub.Unsubscribe(ports.TopicTradeSettled, id))
	require.Empty(t, pubsub.ListSubscriptionsForTopic(ports.TopicTradeSettled))

	err = pubsub.Unsubscribe(ports.TopicTradeSettled, id)
	require.ErrorIs(t, err, webhookpubsub.ErrWebhookNotFound)
}

func TestSubscribeInvalidArgs(t *testing.T) {
	pubsub := newTestService(t)

	_, err := pubsub.Subscribe("unknown_topic", "http://localhost:8888", "")
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidTopic)

	_, err = pubsub.Subscribe(ports.TopicTradeSettled, "not a url", "")
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidEndpoint)
}

func TestWildcardSubscription(t *testing.T) {
	pubsub := newTestService(t)

	_, err := pubsub.Subscribe(
		webhookpubsub.TopicAll, "http://localhost:8888/hook", "",
	)
	require.NoError(t, err)

	// A wildcard subscription shows up for every topic.
	require.Len(t, pubsub.ListSubscriptionsForTopic(ports.TopicTradeSettled), 1)
	require.Len(t, pubsub.ListSubscriptionsForTopic(ports.TopicOrderCancelled), 1)
}

func TestPublish(t *testing.T) {
	var invocations int32
	var gotAuth atomic.Value
	var gotBody atomic.Value

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&invocations, 1)
			gotAuth.Store(r.Header.Get("Authorization"))
			buf := make([]byte, r.ContentLength)
			r.Body.Read(buf)
			gotBody.Store(string(buf))
			w.WriteHeader(http.StatusOK)
		},
	))
	defer server.Close()

	pubsub := newTestService(t)
	_, err := pubsub.Subscribe(ports.TopicTradeSettled, server.URL, "secret")
	require.NoError(t, err)

	message := `{"event":"trade_settled"}`
	require.NoError(t, pubsub.Publish(ports.TopicTradeSettled, message))

	require.Equal(t, int32(1), atomic.LoadInt32(&invocations))
	require.Equal(t, message, gotBody.Load())
	auth, _ := gotAuth.Load().(string)
	require.True(t, strings.HasPrefix(auth, "Bearer "))

	// Publishing a topic nobody subscribed to is a no-op.
	require.NoError(t, pubsub.Publish(ports.TopicOrderCancelled, message))
	require.Equal(t, int32(1), atomic.LoadInt32(&invocations))
}

func TestPublishFailingEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	))
	defer server.Close()

	pubsub := newTestService(t)
	_, err := pubsub.Subscribe(ports.TopicTradeSettled, server.URL, "")
	require.NoError(t, err)

	err = pubsub.Publish(ports.TopicTradeSettled, "{}")
	require.Error(t, err)
}

func newTestService(t *testing.T) ports.SecurePubSub {
	t.Helper()

	pubsub, err := webhookpubsub.NewWebhookPubSubService(5*time.Second, 50)
	require.NoError(t, err)
	return pubsub
}
