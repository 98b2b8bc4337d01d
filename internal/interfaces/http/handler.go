package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/sunridge-network/settled/internal/core/application/settlement"
	"github.com/sunridge-network/settled/internal/core/domain"
)

type orderRequest struct {
	Owner         string `json:"owner"`
	AssetFrom     string `json:"asset_from"`
	AssetTo       string `json:"asset_to"`
	AmountFrom    uint64 `json:"amount_from"`
	AmountTo      uint64 `json:"amount_to"`
	Kind          string `json:"kind"`
	SlippageBps   uint32 `json:"slippage_bps"`
	IsMarketMaker bool   `json:"is_market_maker"`
}

type orderResponse struct {
	Id               string `json:"id"`
	Owner            string `json:"owner"`
	AssetFrom        string `json:"asset_from"`
	AssetTo          string `json:"asset_to"`
	AmountFrom       uint64 `json:"amount_from"`
	AmountTo         uint64 `json:"amount_to"`
	AmountFromFilled uint64 `json:"amount_from_filled"`
	AmountToFilled   uint64 `json:"amount_to_filled"`
	Status           string `json:"status"`
	Kind             string `json:"kind"`
	SlippageBps      uint32 `json:"slippage_bps"`
	IsMarketMaker    bool   `json:"is_market_maker"`
	CreatedAt        int64  `json:"created_at"`
}

type counterFillRequest struct {
	OrderId               string `json:"order_id"`
	AmountOwnerReceives   uint64 `json:"amount_owner_receives"`
	AmountCounterReceives uint64 `json:"amount_counter_receives"`
}

type settleRequest struct {
	Fills []counterFillRequest `json:"fills"`
}

type settlementRecordResponse struct {
	OrderId        string `json:"order_id"`
	Account        string `json:"account"`
	Status         string `json:"status"`
	AssetSent      string `json:"asset_sent"`
	AmountSent     uint64 `json:"amount_sent"`
	AssetReceived  string `json:"asset_received"`
	AmountReceived uint64 `json:"amount_received"`
	Reference      string `json:"reference"`
}

type cancelRequest struct {
	Requester string `json:"requester"`
}

type sunrisePoolResponse struct {
	Id                    uint32 `json:"id"`
	Balance               uint64 `json:"balance"`
	TransactionsRemaining uint32 `json:"transactions_remaining"`
	MinimumTradeValue     uint64 `json:"minimum_trade_value"`
	Rebate                string `json:"rebate"`
}

type rewardResponse struct {
	Account string `json:"account"`
	Epoch   uint64 `json:"epoch"`
	Amount  uint64 `json:"amount"`
}

type claimRequest struct {
	Account string `json:"account"`
	Epoch   uint64 `json:"epoch"`
}

type priceRequest struct {
	BaseAsset  string `json:"base_asset"`
	QuoteAsset string `json:"quote_asset"`
	Price      string `json:"price"`
}

type webhookRequest struct {
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type webhookResponse struct {
	Id       string `json:"id"`
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func orderKindFromString(kind string) (int, bool) {
	switch kind {
	case "market":
		return domain.OrderKindMarket, true
	case "limit":
		return domain.OrderKindLimit, true
	default:
		return 0, false
	}
}

func orderKindToString(kind int) string {
	if kind == domain.OrderKindMarket {
		return "market"
	}
	return "limit"
}

func toOrderResponse(order *domain.Order) orderResponse {
	return orderResponse{
		Id:               order.Id,
		Owner:            order.Owner,
		AssetFrom:        order.AssetFrom,
		AssetTo:          order.AssetTo,
		AmountFrom:       order.AmountFrom,
		AmountTo:         order.AmountTo,
		AmountFromFilled: order.AmountFromFilled,
		AmountToFilled:   order.AmountToFilled,
		Status:           order.Status.String(),
		Kind:             orderKindToString(order.Kind),
		SlippageBps:      order.SlippageBps,
		IsMarketMaker:    order.IsMarketMaker,
		CreatedAt:        order.CreatedAt,
	}
}

func toSettlementRecordResponses(
	records []settlement.SettlementRecord,
) []settlementRecordResponse {
	out := make([]settlementRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, settlementRecordResponse{
			OrderId:        r.OrderId,
			Account:        r.Account,
			Status:         r.Status,
			AssetSent:      r.AssetSent,
			AmountSent:     r.AmountSent,
			AssetReceived:  r.AssetReceived,
			AmountReceived: r.AmountReceived,
			Reference:      r.Reference,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("http: failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusCodeForError(err), errorResponse{Error: err.Error()})
}

// statusCodeForError maps the settlement engine's error classes to HTTP
// status codes. Execution errors map to 500: something was committed and
// the caller must inspect the state, unlike validation errors where
// nothing happened.
func statusCodeForError(err error) int {
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrSunrisePoolNotFound),
		errors.Is(err, domain.ErrRewardNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOrderAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOrderCapacityExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

func decodeJSON(r *http.Request, target interface{}) error {
	return json.NewDecoder(r.Body).Decode(target)
}

// splitPath returns the segments of the request path after the prefix.
func splitPath(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
