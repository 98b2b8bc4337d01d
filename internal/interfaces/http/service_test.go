package httpinterface

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sunridge-network/settled/internal/core/application/fee"
	"github.com/sunridge-network/settled/internal/core/application/pricer"
	"github.com/sunridge-network/settled/internal/core/application/pubsub"
	"github.com/sunridge-network/settled/internal/core/application/settlement"
	"github.com/sunridge-network/settled/internal/core/application/sunrise"
	"github.com/sunridge-network/settled/internal/core/ports"
	inmemoryledger "github.com/sunridge-network/settled/internal/infrastructure/ledger/inmemory"
	"github.com/sunridge-network/settled/internal/infrastructure/oracle"
	webhookpubsub "github.com/sunridge-network/settled/internal/infrastructure/pubsub/webhook"
	"github.com/sunridge-network/settled/internal/infrastructure/storage/db/inmemory"
)

func TestOrderLifecycle(t *testing.T) {
	svc, ledger := newTestHTTPService(t)
	trader := httptest.NewServer(svc.traderServer.Handler)
	defer trader.Close()

	ledger.Fund("asset_x", "alice", 30000)

	// Create.
	body := `{
		"owner": "alice", "asset_from": "asset_x", "asset_to": "asset_y",
		"amount_from": 10000, "amount_to": 200000, "kind": "limit"
	}`
	resp, err := http.Post(
		trader.URL+"/v1/orders", "application/json", bytes.NewBufferString(body),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created orderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.NotEmpty(t, created.Id)
	require.Equal(t, "pending", created.Status)
	require.Equal(t, "limit", created.Kind)

	// Get.
	resp, err = http.Get(trader.URL + "/v1/orders/" + created.Id)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// List for owner.
	resp, err = http.Get(trader.URL + "/v1/orders?owner=alice")
	require.NoError(t, err)
	var listed []orderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed, 1)

	// Cancel by the wrong account.
	resp, err = http.Post(
		trader.URL+"/v1/orders/"+created.Id+"/cancel", "application/json",
		bytes.NewBufferString(`{"requester":"mallory"}`),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Cancel by the owner.
	resp, err = http.Post(
		trader.URL+"/v1/orders/"+created.Id+"/cancel", "application/json",
		bytes.NewBufferString(`{"requester":"alice"}`),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(trader.URL + "/v1/orders/" + created.Id)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSettleEndpoint(t *testing.T) {
	svc, ledger := newTestHTTPService(t)
	trader := httptest.NewServer(svc.traderServer.Handler)
	defer trader.Close()

	ledger.Fund("asset_x", "alice", 30000)
	ledger.Fund("asset_y", "bob", 300000)

	primary := createTestOrder(
		t, trader.URL, "alice", "asset_x", "asset_y", 10000, 200000,
	)
	counter := createTestOrder(
		t, trader.URL, "bob", "asset_y", "asset_x", 200000, 10000,
	)

	body := fmt.Sprintf(`{
		"fills": [{
			"order_id": %q,
			"amount_owner_receives": 200000,
			"amount_counter_receives": 10000
		}]
	}`, counter)
	resp, err := http.Post(
		trader.URL+"/v1/orders/"+primary+"/settle", "application/json",
		bytes.NewBufferString(body),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []settlementRecordResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	resp.Body.Close()
	require.Len(t, records, 2)

	// Settling a removed order is a 404.
	resp, err = http.Post(
		trader.URL+"/v1/orders/"+primary+"/settle", "application/json",
		bytes.NewBufferString(body),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestOperatorEndpoints(t *testing.T) {
	svc, _ := newTestHTTPService(t)
	operator := httptest.NewServer(svc.operatorServer.Handler)
	defer operator.Close()

	// Price override.
	resp, err := http.Post(
		operator.URL+"/v1/prices", "application/json",
		bytes.NewBufferString(`{"base_asset":"btc","quote_asset":"usdt","price":"20000"}`),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Sunrise views.
	resp, err = http.Get(operator.URL + "/v1/sunrise/pools")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(operator.URL + "/v1/sunrise/leftover")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Webhook registration round trip.
	resp, err = http.Post(
		operator.URL+"/v1/webhooks", "application/json",
		bytes.NewBufferString(`{"topic":"trade_settled","endpoint":"http://localhost:9999/hook"}`),
	)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var hook webhookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hook))
	resp.Body.Close()

	resp, err = http.Get(operator.URL + "/v1/webhooks?topic=trade_settled")
	require.NoError(t, err)
	var hooks []webhookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hooks))
	resp.Body.Close()
	require.Len(t, hooks, 1)
	require.Equal(t, hook.Id, hooks[0].Id)

	// Metrics endpoint is mounted.
	resp, err = http.Get(operator.URL + "/metrics")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func createTestOrder(
	t *testing.T, baseURL, owner, assetFrom, assetTo string,
	amountFrom, amountTo uint64,
) string {
	t.Helper()

	body := fmt.Sprintf(`{
		"owner": %q, "asset_from": %q, "asset_to": %q,
		"amount_from": %d, "amount_to": %d, "kind": "limit"
	}`, owner, assetFrom, assetTo, amountFrom, amountTo)
	resp, err := http.Post(
		baseURL+"/v1/orders", "application/json", bytes.NewBufferString(body),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created orderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created.Id
}

func newTestHTTPService(t *testing.T) (*Service, *inmemoryledger.Ledger) {
	t.Helper()

	repoManager := inmemory.NewRepoManager(100)
	ledger := inmemoryledger.NewLedger()

	priceOracle, err := oracle.NewPriceTable(repoManager)
	require.NoError(t, err)

	feeSvc, err := fee.NewService(priceOracle, "ref", fee.Rates{
		StandardBps: 100, MakerMarketBps: 50, MakerLimitBps: 25,
	})
	require.NoError(t, err)

	sunriseSvc, err := sunrise.NewService(
		repoManager, priceOracle, ledger, "srg",
		decimal.NewFromFloat(0.1), time.Hour,
	)
	require.NoError(t, err)

	securePubSub, err := webhookpubsub.NewWebhookPubSubService(5*time.Second, 50)
	require.NoError(t, err)
	pubsubSvc, err := pubsub.NewService(securePubSub)
	require.NoError(t, err)

	settlementSvc, err := settlement.NewService(
		repoManager, ledger, feeSvc, sunriseSvc, pubsubSvc, "fee_account", 10,
	)
	require.NoError(t, err)

	pricerSvc, err := pricer.NewService(repoManager, nopFeeder{})
	require.NoError(t, err)

	svc, err := NewService(
		settlementSvc, sunriseSvc, pubsubSvc, pricerSvc, repoManager,
		"localhost:0", "localhost:0",
	)
	require.NoError(t, err)
	return svc, ledger
}

type nopFeeder struct{}

func (nopFeeder) WellKnownMarkets() []ports.Market        { return nil }
func (nopFeeder) SubscribeMarkets([]ports.Market) error   { return nil }
func (nopFeeder) Start() error                            { return nil }
func (nopFeeder) Stop()                                   {}
func (nopFeeder) FeedChan() chan ports.PriceFeed          { return nil }
