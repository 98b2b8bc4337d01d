package krakenfeeder

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sunridge-network/settled/internal/core/ports"
)

func TestParseFeed(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		message string
		isNil   bool
	}{
		{
			name:    "ticker update",
			message: `[42,{"c":["20000.5","0.001"]},"ticker","XBT/USDT"]`,
		},
		{
			name:    "unknown pair",
			message: `[42,{"c":["20000.5","0.001"]},"ticker","XBT/EUR"]`,
			isNil:   true,
		},
		{
			name:    "heartbeat",
			message: `{"event":"heartbeat"}`,
			isNil:   true,
		},
		{
			name:    "subscription ack",
			message: `{"event":"subscriptionStatus","status":"subscribed"}`,
			isNil:   true,
		},
		{
			name:    "malformed price",
			message: `[42,{"c":["not-a-number","0.001"]},"ticker","XBT/USDT"]`,
			isNil:   true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			feed := svc.parseFeed([]byte(tt.message))
			if tt.isNil {
				require.Nil(t, feed)
				return
			}
			require.NotNil(t, feed)
			require.Equal(t, "btc", feed.GetMarket().BaseAsset())
			require.Equal(t, "usdt", feed.GetMarket().QuoteAsset())
			require.Equal(t, "20000.5", feed.GetBasePrice().String())
			require.Equal(t,
				decimal.NewFromInt(1).Div(feed.GetBasePrice()).Round(8).String(),
				feed.GetQuotePrice().String(),
			)
		})
	}
}

func newTestService(t *testing.T) *service {
	t.Helper()

	feeder, err := NewPriceFeeder(time.Second)
	require.NoError(t, err)

	svc := feeder.(*service)
	svc.marketByTicker = map[string]ports.Market{
		"XBT/USDT": market{baseAsset: "btc", quoteAsset: "usdt", ticker: "XBT/USDT"},
	}
	return svc
}
