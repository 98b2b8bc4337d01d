package settlement

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sunridge-network/settled/internal/core/application/fee"
	"github.com/sunridge-network/settled/internal/core/application/pubsub"
	"github.com/sunridge-network/settled/internal/core/application/sunrise"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
	"github.com/sunridge-network/settled/pkg/mathutil"
)

var (
	// ErrMissingCounterFills is returned by Settle with an empty fill list.
	ErrMissingCounterFills = fmt.Errorf("at least one counter fill is required")
	// ErrTooManyCounterFills is returned when the fill list exceeds the
	// configured bound.
	ErrTooManyCounterFills = fmt.Errorf("too many counter fills")
)

// Service is the settlement engine. It owns every mutation of order
// records: creation with escrow, matching against counter fills, escrow
// unwind and cancellation. At most one settlement or cancellation is in
// flight per order id at any time.
type Service struct {
	repoManager ports.RepoManager
	ledger      ports.Ledger
	feeSvc      *fee.Service
	sunriseSvc  *sunrise.Service
	pubsubSvc   *pubsub.Service

	feeAccount      string
	maxCounterFills int
	locker          *orderLocker
}

func NewService(
	repoManager ports.RepoManager,
	ledger ports.Ledger,
	feeSvc *fee.Service,
	sunriseSvc *sunrise.Service,
	pubsubSvc *pubsub.Service,
	feeAccount string,
	maxCounterFills int,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger")
	}
	if feeSvc == nil {
		return nil, fmt.Errorf("missing fee service")
	}
	if sunriseSvc == nil {
		return nil, fmt.Errorf("missing sunrise service")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if feeAccount == "" {
		return nil, fmt.Errorf("missing fee account")
	}
	if maxCounterFills <= 0 {
		return nil, fmt.Errorf("max counter fills must be positive")
	}

	return &Service{
		repoManager:     repoManager,
		ledger:          ledger,
		feeSvc:          feeSvc,
		sunriseSvc:      sunriseSvc,
		pubsubSvc:       pubsubSvc,
		feeAccount:      feeAccount,
		maxCounterFills: maxCounterFills,
		locker:          newOrderLocker(),
	}, nil
}

// CreateOrder validates and persists a new order after escrowing its full
// sending amount plus the fee due on it.
func (s *Service) CreateOrder(
	ctx context.Context,
	owner, assetFrom, assetTo string,
	amountFrom, amountTo uint64,
	kind int, slippageBps uint32, isMarketMaker bool,
) (*domain.Order, error) {
	order, err := domain.NewOrder(
		owner, assetFrom, assetTo, amountFrom, amountTo,
		kind, slippageBps, isMarketMaker,
	)
	if err != nil {
		return nil, err
	}

	orderFee, err := s.feeSvc.CalculateFee(
		ctx, assetFrom, amountFrom, kind, isMarketMaker,
	)
	if err != nil {
		return nil, err
	}
	escrow, err := mathutil.CheckedAdd(amountFrom, orderFee.Fee)
	if err != nil {
		return nil, domain.ErrOverflow
	}

	if err := s.ledger.Hold(ctx, assetFrom, owner, escrow); err != nil {
		return nil, err
	}

	if err := s.repoManager.OrderRepository().AddOrder(ctx, order); err != nil {
		if _, releaseErr := s.ledger.Release(
			ctx, assetFrom, owner, escrow, true,
		); releaseErr != nil {
			log.WithError(releaseErr).Errorf(
				"failed to release escrow for discarded order %s", order.Id,
			)
		}
		return nil, err
	}

	log.Debugf("created order %s for account %s", order.Id, owner)
	return order, nil
}

// GetOrder returns the order with the given id.
func (s *Service) GetOrder(
	ctx context.Context, orderID string,
) (*domain.Order, error) {
	return s.repoManager.OrderRepository().GetOrder(ctx, orderID)
}

// ListOrdersForOwner returns the open orders of the given account.
func (s *Service) ListOrdersForOwner(
	ctx context.Context, owner string,
) ([]domain.Order, error) {
	return s.repoManager.OrderRepository().GetOrdersForOwner(ctx, owner)
}

// Settle matches the primary order against the proposed counter fills.
//
// The call is split in two phases. The validation phase checks statuses,
// price boundaries on both sides, asset directions, unfilled capacities
// and fund availability for every fill; any error returned from it
// guarantees that neither the stores nor the ledger were touched. The
// execution phase then commits the fills sequentially; a failure there is
// reported as *domain.ExecutionError with the index of the failing fill,
// fills before it stay committed. An index of -1 reports a failure while
// closing out the primary order after every fill committed.
func (s *Service) Settle(
	ctx context.Context, orderID string, fills []CounterFill,
) ([]SettlementRecord, error) {
	if len(fills) == 0 {
		return nil, ErrMissingCounterFills
	}
	if len(fills) > s.maxCounterFills {
		return nil, ErrTooManyCounterFills
	}

	ids := make([]string, 0, len(fills)+1)
	ids = append(ids, orderID)
	for _, f := range fills {
		ids = append(ids, f.OrderId)
	}
	unlock := s.locker.lock(ids...)
	defer unlock()

	orderRepo := s.repoManager.OrderRepository()
	primary, err := orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !primary.IsFillable() {
		return nil, domain.ErrOrderInvalidStatus
	}

	plans, totalFrom, totalTo, totalPrimaryFee, err := s.validateFills(
		ctx, primary, fills,
	)
	if err != nil {
		return nil, err
	}

	if totalFrom > primary.RemainingFrom() || totalTo > primary.RemainingTo() {
		return nil, domain.ErrOverflow
	}

	escrowNeeded, err := mathutil.CheckedAdd(totalFrom, totalPrimaryFee)
	if err != nil {
		return nil, domain.ErrOverflow
	}
	held, err := s.ledger.HeldBalance(ctx, primary.AssetFrom, primary.Owner)
	if err != nil {
		return nil, err
	}
	if held < escrowNeeded {
		return nil, domain.ErrInsufficientFunds
	}
	if err := s.ledger.CanDeposit(
		ctx, primary.AssetTo, primary.Owner, totalTo,
	); err != nil {
		return nil, domain.ErrCannotDeposit
	}

	// Validation done, start mutating. The primary's filled counters are
	// updated first so its status reflects the whole batch.
	if err := primary.Fill(totalFrom, totalTo); err != nil {
		return nil, err
	}
	if err := orderRepo.UpdateOrder(
		ctx, primary.Id, func(_ *domain.Order) (*domain.Order, error) {
			return primary, nil
		},
	); err != nil {
		return nil, err
	}

	epoch := s.sunriseSvc.CurrentEpoch(time.Now())
	records := make([]SettlementRecord, 0, len(plans)+1)
	for i := range plans {
		if err := s.executeFill(ctx, primary, &plans[i], epoch); err != nil {
			return records, &domain.ExecutionError{Index: i, Err: err}
		}
		counter := plans[i].counter
		records = append(records, SettlementRecord{
			OrderId:        counter.Id,
			Account:        counter.Owner,
			Status:         statusString(counter.Status),
			AssetSent:      counter.AssetFrom,
			AmountSent:     plans[i].fill.AmountOwnerReceives,
			AssetReceived:  counter.AssetTo,
			AmountReceived: plans[i].fill.AmountCounterReceives,
			Reference:      primary.Id,
		})
	}

	if primary.IsCompleted() || primary.IsMarket() {
		// Every fill committed at this point; an index of -1 marks a
		// failure closing out the primary, not a fill's.
		if _, err := s.unwind(ctx, primary); err != nil {
			return records, &domain.ExecutionError{Index: -1, Err: err}
		}
		if err := orderRepo.DeleteOrder(ctx, primary.Id); err != nil {
			return records, &domain.ExecutionError{Index: -1, Err: err}
		}
	}
	records = append(records, SettlementRecord{
		OrderId:        primary.Id,
		Account:        primary.Owner,
		Status:         statusString(primary.Status),
		AssetSent:      primary.AssetFrom,
		AmountSent:     totalFrom,
		AssetReceived:  primary.AssetTo,
		AmountReceived: totalTo,
		Reference:      primary.Id,
	})

	s.publishSettlement(records)
	log.Debugf(
		"settled order %s with %d counter fill(s)", primary.Id, len(plans),
	)
	return records, nil
}

// Cancel unwinds the remaining escrow of the given order and removes it.
// Only the order's owner can cancel it.
func (s *Service) Cancel(ctx context.Context, orderID, requester string) error {
	unlock := s.locker.lock(orderID)
	defer unlock()

	orderRepo := s.repoManager.OrderRepository()
	order, err := orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Owner != requester {
		return domain.ErrOrderAccessDenied
	}
	if !order.IsFillable() {
		return domain.ErrOrderInvalidStatus
	}

	released, err := s.unwind(ctx, order)
	if err != nil {
		return err
	}
	if err := orderRepo.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	cancelledOrdersCounter.Inc()
	if err := s.pubsubSvc.PublishOrderCancelledEvent(pubsub.CancelEvent{
		OrderId:        order.Id,
		Account:        order.Owner,
		AmountReleased: released,
	}); err != nil {
		log.WithError(err).Warnf(
			"failed to publish cancellation of order %s", order.Id,
		)
	}

	log.Debugf("cancelled order %s, released %d", order.Id, released)
	return nil
}

// fillPlan carries the data computed during validation that the execution
// phase needs for a single counter fill.
type fillPlan struct {
	fill       CounterFill
	counter    *domain.Order
	primaryFee *domain.Fee
	counterFee *domain.Fee
}

func (s *Service) validateFills(
	ctx context.Context, primary *domain.Order, fills []CounterFill,
) (plans []fillPlan, totalFrom, totalTo, totalPrimaryFee uint64, err error) {
	orderRepo := s.repoManager.OrderRepository()
	nominal := primary.NominalPrice()
	seen := make(map[string]struct{}, len(fills))
	plans = make([]fillPlan, 0, len(fills))

	for i, f := range fills {
		wrap := func(cause error) error {
			return &domain.CounterFillError{Index: i, Err: cause}
		}

		if f.OrderId == primary.Id {
			return nil, 0, 0, 0, wrap(domain.ErrInvalidCounterOrder)
		}
		if _, ok := seen[f.OrderId]; ok {
			return nil, 0, 0, 0, wrap(domain.ErrInvalidCounterOrder)
		}
		seen[f.OrderId] = struct{}{}

		if f.AmountOwnerReceives == 0 || f.AmountCounterReceives == 0 {
			return nil, 0, 0, 0, wrap(domain.ErrInvalidCounterOrder)
		}

		counter, getErr := orderRepo.GetOrder(ctx, f.OrderId)
		if getErr != nil {
			if getErr == domain.ErrOrderNotFound {
				getErr = domain.ErrCounterOrderNotFound
			}
			return nil, 0, 0, 0, wrap(getErr)
		}

		// Price boundaries for the primary. The upper bound applies to any
		// order kind, the lower one only to non-limit orders: a limit order
		// owner is happy to be filled at a better price than asked.
		offered := mathutil.NewRatio(f.AmountCounterReceives, f.AmountOwnerReceives)
		if !offered.WithinUpperBound(nominal, primary.SlippageBps) {
			return nil, 0, 0, 0, domain.ErrSlippageExceeded
		}
		if !primary.IsLimit() &&
			!offered.WithinLowerBound(nominal, primary.SlippageBps) {
			return nil, 0, 0, 0, domain.ErrSlippageExceeded
		}

		if !counter.IsFillable() {
			return nil, 0, 0, 0, wrap(domain.ErrInvalidCounterOrder)
		}
		if counter.AssetFrom != primary.AssetTo ||
			counter.AssetTo != primary.AssetFrom {
			return nil, 0, 0, 0, wrap(domain.ErrInvalidCounterOrder)
		}
		if counter.RemainingFrom() < f.AmountOwnerReceives ||
			counter.RemainingTo() < f.AmountCounterReceives {
			return nil, 0, 0, 0, wrap(domain.ErrInvalidCounterOrder)
		}

		// Mirror price validation against the counter's own nominal price
		// and tolerance.
		counterOffered := mathutil.NewRatio(
			f.AmountOwnerReceives, f.AmountCounterReceives,
		)
		counterNominal := counter.NominalPrice()
		if !counterOffered.WithinUpperBound(counterNominal, counter.SlippageBps) {
			return nil, 0, 0, 0, wrap(domain.ErrCounterSlippageExceeded)
		}
		if !counter.IsLimit() && !counterOffered.WithinLowerBound(
			counterNominal, counter.SlippageBps,
		) {
			return nil, 0, 0, 0, wrap(domain.ErrCounterSlippageExceeded)
		}

		primaryFee, feeErr := s.feeSvc.CalculateFee(
			ctx, primary.AssetFrom, f.AmountCounterReceives,
			primary.Kind, primary.IsMarketMaker,
		)
		if feeErr != nil {
			return nil, 0, 0, 0, feeErr
		}
		counterFee, feeErr := s.feeSvc.CalculateFee(
			ctx, counter.AssetFrom, f.AmountOwnerReceives,
			counter.Kind, counter.IsMarketMaker,
		)
		if feeErr != nil {
			return nil, 0, 0, 0, feeErr
		}

		neededHeld, addErr := mathutil.CheckedAdd(
			f.AmountOwnerReceives, counterFee.Fee,
		)
		if addErr != nil {
			return nil, 0, 0, 0, domain.ErrOverflow
		}
		counterHeld, heldErr := s.ledger.HeldBalance(
			ctx, counter.AssetFrom, counter.Owner,
		)
		if heldErr != nil {
			return nil, 0, 0, 0, heldErr
		}
		if counterHeld < neededHeld {
			return nil, 0, 0, 0, wrap(domain.ErrInsufficientFunds)
		}

		// Every credit leg must be depositable before anything moves: the
		// counter owner's receiving leg and both fee legs. The primary
		// owner's receiving leg is checked on the aggregate by the caller.
		if depErr := s.ledger.CanDeposit(
			ctx, primary.AssetFrom, counter.Owner, f.AmountCounterReceives,
		); depErr != nil {
			return nil, 0, 0, 0, wrap(domain.ErrCannotDeposit)
		}
		if primaryFee.Fee > 0 {
			if depErr := s.ledger.CanDeposit(
				ctx, primary.AssetFrom, s.feeAccount, primaryFee.Fee,
			); depErr != nil {
				return nil, 0, 0, 0, domain.ErrCannotDeposit
			}
		}
		if counterFee.Fee > 0 {
			if depErr := s.ledger.CanDeposit(
				ctx, counter.AssetFrom, s.feeAccount, counterFee.Fee,
			); depErr != nil {
				return nil, 0, 0, 0, domain.ErrCannotDeposit
			}
		}

		if totalFrom, err = mathutil.CheckedAdd(
			totalFrom, f.AmountCounterReceives,
		); err != nil {
			return nil, 0, 0, 0, domain.ErrOverflow
		}
		if totalTo, err = mathutil.CheckedAdd(
			totalTo, f.AmountOwnerReceives,
		); err != nil {
			return nil, 0, 0, 0, domain.ErrOverflow
		}
		if totalPrimaryFee, err = mathutil.CheckedAdd(
			totalPrimaryFee, primaryFee.Fee,
		); err != nil {
			return nil, 0, 0, 0, domain.ErrOverflow
		}

		plans = append(plans, fillPlan{f, counter, primaryFee, counterFee})
	}
	return plans, totalFrom, totalTo, totalPrimaryFee, nil
}

// executeFill commits a single counter fill: order store mutation, fund
// movement on both legs, fee collection and sunrise registration.
func (s *Service) executeFill(
	ctx context.Context, primary *domain.Order, plan *fillPlan, epoch uint64,
) error {
	counter := plan.counter
	orderRepo := s.repoManager.OrderRepository()

	if err := counter.Fill(
		plan.fill.AmountOwnerReceives, plan.fill.AmountCounterReceives,
	); err != nil {
		return err
	}
	if err := orderRepo.UpdateOrder(
		ctx, counter.Id, func(_ *domain.Order) (*domain.Order, error) {
			return counter, nil
		},
	); err != nil {
		return err
	}

	// Primary pays its sending leg: net amount to the counter owner, fee
	// to the fee account.
	if _, err := s.ledger.TransferHeld(
		ctx, primary.AssetFrom, primary.Owner, counter.Owner,
		plan.fill.AmountCounterReceives, false, false,
	); err != nil {
		return err
	}
	if plan.primaryFee.Fee > 0 {
		if _, err := s.ledger.TransferHeld(
			ctx, primary.AssetFrom, primary.Owner, s.feeAccount,
			plan.primaryFee.Fee, false, false,
		); err != nil {
			return err
		}
	}
	if err := s.registerFee(ctx, plan.primaryFee, primary.Owner, epoch); err != nil {
		return err
	}

	// Reciprocal leg.
	if _, err := s.ledger.TransferHeld(
		ctx, counter.AssetFrom, counter.Owner, primary.Owner,
		plan.fill.AmountOwnerReceives, false, false,
	); err != nil {
		return err
	}
	if plan.counterFee.Fee > 0 {
		if _, err := s.ledger.TransferHeld(
			ctx, counter.AssetFrom, counter.Owner, s.feeAccount,
			plan.counterFee.Fee, false, false,
		); err != nil {
			return err
		}
	}
	if err := s.registerFee(ctx, plan.counterFee, counter.Owner, epoch); err != nil {
		return err
	}

	settledFillsCounter.Inc()
	settledVolumeCounter.WithLabelValues(primary.AssetFrom).
		Add(float64(plan.fill.AmountCounterReceives))
	settledVolumeCounter.WithLabelValues(counter.AssetFrom).
		Add(float64(plan.fill.AmountOwnerReceives))
	collectedFeesCounter.WithLabelValues(primary.AssetFrom).
		Add(float64(plan.primaryFee.Fee))
	collectedFeesCounter.WithLabelValues(counter.AssetFrom).
		Add(float64(plan.counterFee.Fee))

	// Market counters are one-shot, any fill finalizes them.
	if counter.IsCompleted() || counter.IsMarket() {
		if _, err := s.unwind(ctx, counter); err != nil {
			return err
		}
		if err := orderRepo.DeleteOrder(ctx, counter.Id); err != nil {
			return err
		}
	}
	return nil
}

// registerFee runs the sunrise rebate allocation for a paid fee.
func (s *Service) registerFee(
	ctx context.Context, paidFee *domain.Fee, account string, epoch uint64,
) error {
	pool, err := s.sunriseSvc.SelectPool(ctx, paidFee)
	if err != nil {
		return err
	}
	if _, err := s.sunriseSvc.Apply(ctx, pool, paidFee, account, epoch); err != nil {
		return err
	}
	return nil
}

// unwind releases the escrow still held for an order being closed: the
// unfilled remainder plus the fee over-escrowed for it. Releasing zero is
// a valid no-op.
func (s *Service) unwind(
	ctx context.Context, order *domain.Order,
) (uint64, error) {
	rate := s.feeSvc.RateBps(order.IsMarketMaker, order.Kind)
	_, feeOnFull, err := mathutil.PlusFee(order.AmountFrom, rate)
	if err != nil {
		return 0, domain.ErrOverflow
	}
	_, feeOnFilled, err := mathutil.PlusFee(order.AmountFromFilled, rate)
	if err != nil {
		return 0, domain.ErrOverflow
	}

	toRelease := order.RemainingFrom() + (feeOnFull - feeOnFilled)
	if toRelease == 0 {
		return 0, nil
	}

	released, err := s.ledger.Release(
		ctx, order.AssetFrom, order.Owner, toRelease, true,
	)
	if err != nil {
		return 0, err
	}
	if released < toRelease {
		log.Warnf(
			"released %d of %d for order %s", released, toRelease, order.Id,
		)
	}
	return released, nil
}

func (s *Service) publishSettlement(records []SettlementRecord) {
	events := make([]pubsub.SettlementEvent, 0, len(records))
	for _, r := range records {
		events = append(events, pubsub.SettlementEvent{
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
	if err := s.pubsubSvc.PublishTradeSettledEvent(events); err != nil {
		log.WithError(err).Warn("failed to publish settlement records")
	}
}
