package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sunridge-network/settled/internal/core/application/pricer"
	"github.com/sunridge-network/settled/internal/core/application/pubsub"
	"github.com/sunridge-network/settled/internal/core/application/settlement"
	"github.com/sunridge-network/settled/internal/core/application/sunrise"
	"github.com/sunridge-network/settled/internal/core/ports"
)

// Service is the JSON/HTTP surface of the daemon. It exposes the order
// lifecycle on the trader listener and pool management, price overrides
// and Prometheus metrics on the operator one.
type Service struct {
	settlementSvc *settlement.Service
	sunriseSvc    *sunrise.Service
	pubsubSvc     *pubsub.Service
	pricerSvc     *pricer.Service
	repoManager   ports.RepoManager

	traderServer   *http.Server
	operatorServer *http.Server
}

func NewService(
	settlementSvc *settlement.Service,
	sunriseSvc *sunrise.Service,
	pubsubSvc *pubsub.Service,
	pricerSvc *pricer.Service,
	repoManager ports.RepoManager,
	traderAddr, operatorAddr string,
) (*Service, error) {
	if settlementSvc == nil {
		return nil, fmt.Errorf("missing settlement service")
	}
	if sunriseSvc == nil {
		return nil, fmt.Errorf("missing sunrise service")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if pricerSvc == nil {
		return nil, fmt.Errorf("missing pricer service")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if traderAddr == "" || operatorAddr == "" {
		return nil, fmt.Errorf("missing listening address")
	}

	svc := &Service{
		settlementSvc: settlementSvc,
		sunriseSvc:    sunriseSvc,
		pubsubSvc:     pubsubSvc,
		pricerSvc:     pricerSvc,
		repoManager:   repoManager,
	}

	traderMux := http.NewServeMux()
	traderMux.HandleFunc("/v1/orders", svc.ordersHandler)
	traderMux.HandleFunc("/v1/orders/", svc.orderHandler)
	traderMux.HandleFunc("/v1/rewards/", svc.rewardsHandler)
	traderMux.HandleFunc("/v1/rewards/claim", svc.claimHandler)
	traderMux.HandleFunc("/healthz", svc.healthHandler)

	operatorMux := http.NewServeMux()
	operatorMux.HandleFunc("/v1/sunrise/pools", svc.poolsHandler)
	operatorMux.HandleFunc("/v1/sunrise/leftover", svc.leftoverHandler)
	operatorMux.HandleFunc("/v1/prices", svc.pricesHandler)
	operatorMux.HandleFunc("/v1/webhooks", svc.webhooksHandler)
	operatorMux.Handle("/metrics", promhttp.Handler())
	operatorMux.HandleFunc("/healthz", svc.healthHandler)

	svc.traderServer = &http.Server{Addr: traderAddr, Handler: traderMux}
	svc.operatorServer = &http.Server{Addr: operatorAddr, Handler: operatorMux}
	return svc, nil
}

// Start brings both listeners up. It blocks until one of them stops.
func (s *Service) Start() error {
	errChan := make(chan error, 2)

	go func() {
		log.Infof("trader interface listening on %s", s.traderServer.Addr)
		if err := s.traderServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	go func() {
		log.Infof("operator interface listening on %s", s.operatorServer.Addr)
		if err := s.operatorServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	return <-errChan
}

// Stop shuts both listeners down gracefully.
func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// nolint
	s.traderServer.Shutdown(ctx)
	// nolint
	s.operatorServer.Shutdown(ctx)
}

func (s *Service) ordersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createOrder(w, r)
	case http.MethodGet:
		s.listOrders(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// orderHandler routes /v1/orders/{id}, /v1/orders/{id}/settle and
// /v1/orders/{id}/cancel.
func (s *Service) orderHandler(w http.ResponseWriter, r *http.Request) {
	segments := splitPath(r.URL.Path, "/v1/orders")
	switch {
	case len(segments) == 1 && r.Method == http.MethodGet:
		s.getOrder(w, r, segments[0])
	case len(segments) == 2 && segments[1] == "settle" && r.Method == http.MethodPost:
		s.settleOrder(w, r, segments[0])
	case len(segments) == 2 && segments[1] == "cancel" && r.Method == http.MethodPost:
		s.cancelOrder(w, r, segments[0])
	default:
		http.NotFound(w, r)
	}
}

func (s *Service) createOrder(w http.ResponseWriter, r *http.Request) {
	req := orderRequest{}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	kind, ok := orderKindFromString(req.Kind)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "kind must be market or limit"})
		return
	}

	order, err := s.settlementSvc.CreateOrder(
		r.Context(), req.Owner, req.AssetFrom, req.AssetTo,
		req.AmountFrom, req.AmountTo, kind, req.SlippageBps, req.IsMarketMaker,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (s *Service) listOrders(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing owner"})
		return
	}

	orders, err := s.settlementSvc.ListOrdersForOwner(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) getOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	order, err := s.settlementSvc.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (s *Service) settleOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	req := settleRequest{}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	fills := make([]settlement.CounterFill, 0, len(req.Fills))
	for _, f := range req.Fills {
		fills = append(fills, settlement.CounterFill{
			OrderId:               f.OrderId,
			AmountOwnerReceives:   f.AmountOwnerReceives,
			AmountCounterReceives: f.AmountCounterReceives,
		})
	}

	records, err := s.settlementSvc.Settle(r.Context(), orderID, fills)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementRecordResponses(records))
}

func (s *Service) cancelOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	req := cancelRequest{}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.settlementSvc.Cancel(r.Context(), orderID, req.Requester); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// rewardsHandler routes /v1/rewards/{account}.
func (s *Service) rewardsHandler(w http.ResponseWriter, r *http.Request) {
	segments := splitPath(r.URL.Path, "/v1/rewards")
	if len(segments) != 1 || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rewards, err := s.repoManager.RewardRepository().GetRewards(
		r.Context(), segments[0],
	)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]rewardResponse, 0, len(rewards))
	for _, reward := range rewards {
		out = append(out, rewardResponse{
			Account: reward.Account,
			Epoch:   reward.Epoch,
			Amount:  reward.Amount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) claimHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	req := claimRequest{}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	claimed, err := s.sunriseSvc.ClaimRewards(r.Context(), req.Account, req.Epoch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rewardResponse{
		Account: req.Account,
		Epoch:   req.Epoch,
		Amount:  claimed,
	})
}

func (s *Service) poolsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	pools, err := s.repoManager.SunriseRepository().GetPools(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]sunrisePoolResponse, 0, len(pools))
	for _, pool := range pools {
		out = append(out, sunrisePoolResponse{
			Id:                    pool.Id,
			Balance:               pool.Balance,
			TransactionsRemaining: pool.TransactionsRemaining,
			MinimumTradeValue:     pool.MinimumTradeValue,
			Rebate:                pool.Rebate,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) leftoverHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	leftover, err := s.repoManager.SunriseRepository().GetLeftover(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"balance": leftover})
}

func (s *Service) pricesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	req := priceRequest{}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid price"})
		return
	}

	if err := s.pricerSvc.UpdatePrice(
		r.Context(), req.BaseAsset, req.QuoteAsset, price,
	); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) webhooksHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		req := webhookRequest{}
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		id, err := s.pubsubSvc.AddWebhook(
			r.Context(), req.Topic, req.Endpoint, req.Secret,
		)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, webhookResponse{
			Id: id, Topic: req.Topic, Endpoint: req.Endpoint,
		})
	case http.MethodDelete:
		topic := r.URL.Query().Get("topic")
		id := r.URL.Query().Get("id")
		if err := s.pubsubSvc.RemoveWebhook(r.Context(), topic, id); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		topic := r.URL.Query().Get("topic")
		subs := s.pubsubSvc.ListWebhooks(r.Context(), topic)
		out := make([]webhookResponse, 0, len(subs))
		for _, sub := range subs {
			out = append(out, webhookResponse{
				Id: sub.Id(), Topic: sub.Topic(), Endpoint: sub.NotifyAt(),
			})
		}
		writeJSON(w, http.StatusOK, out)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Service) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
