package gridbot

import (
	"fmt"
	"strings"

	"gridbot/internal/config"
	"gridbot/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// ExchangeAPI is the slice of the signed client the engine consumes. The
// concrete exchange.Client satisfies it; tests substitute a fake.
type ExchangeAPI interface {
	GetAvailableBalance(currency string) decimal.Decimal
	GetMarketPrice(pair string) (decimal.Decimal, error)
	AddOrder(pair string, typ models.OrderType, side models.OrderSide, size, price decimal.Decimal) (models.OrderRecord, error)
	GetOrderDetails(orderID string) (models.OrderRecord, error)
	CancelOrder(pair, orderID string) (models.CancelResult, error)
}

// FillRecorder receives orders observed FILLED during polling. Recorder
// failures are logged, never fatal.
type FillRecorder interface {
	RecordFill(order models.OrderRecord) error
}

type trackedOrder struct {
	id     string
	status models.OrderStatus
}

// Gridbot places a ladder of limit orders around the market price and polls
// them until every order reaches a terminal status. One instance owns its
// tracked-order set; it is not safe for concurrent use.
type Gridbot struct {
	cfg      config.GridConfig
	client   ExchangeAPI
	orders   []trackedOrder
	recorder FillRecorder
}

type Option func(*Gridbot)

// WithFillRecorder attaches a sink for filled orders.
func WithFillRecorder(r FillRecorder) Option {
	return func(b *Gridbot) { b.recorder = r }
}

func New(cfg config.GridConfig, client ExchangeAPI, opts ...Option) *Gridbot {
	b := &Gridbot{cfg: cfg, client: client}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func splitPair(pair string) (base, quote string, err error) {
	parts := strings.Split(pair, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("pair %q must be of the form BASE_QUOTE", pair)
	}
	return parts[0], parts[1], nil
}

// Initialize validates the configuration against the current market state
// and places the full ladder. It is all-or-nothing: if any placement fails,
// the orders already placed are cancelled and an error is returned.
func (b *Gridbot) Initialize() error {
	base, quote, err := splitPair(b.cfg.Pair)
	if err != nil {
		return err
	}

	if b.cfg.UpperLimit.IsNegative() || b.cfg.LowerLimit.IsNegative() {
		return fmt.Errorf("limits cannot be negative values")
	}
	if b.cfg.UpperLimit.LessThan(b.cfg.LowerLimit) {
		return fmt.Errorf("upper limit must be higher than lower limit")
	}

	baseBalance := b.client.GetAvailableBalance(base)
	quoteBalance := b.client.GetAvailableBalance(quote)

	currentPrice, err := b.client.GetMarketPrice(b.cfg.Pair)
	if err != nil {
		return errors.Wrap(err, "failed to get market price")
	}
	log.Infof("Current %s price: %s", b.cfg.Pair, currentPrice)

	if currentPrice.LessThan(b.cfg.LowerLimit) || currentPrice.GreaterThan(b.cfg.UpperLimit) {
		return fmt.Errorf("current price %s is outside the lower/upper limits [%s, %s]",
			currentPrice, b.cfg.LowerLimit, b.cfg.UpperLimit)
	}

	lad, err := computeLadder(b.cfg.LowerLimit, b.cfg.UpperLimit, b.cfg.OrderAmount,
		currentPrice, b.cfg.NumberOfGrids)
	if err != nil {
		return err
	}

	if baseBalance.LessThan(lad.RequiredBase) {
		return fmt.Errorf("need at least %s %s to start this bot (available: %s)",
			lad.RequiredBase, base, baseBalance)
	}
	if quoteBalance.LessThan(lad.RequiredQuote) {
		return fmt.Errorf("need at least %s %s to start this bot (available: %s)",
			lad.RequiredQuote, quote, quoteBalance)
	}
	log.Infof("Balances: %s %s, %s %s", baseBalance, base, quoteBalance, quote)

	for _, level := range lad.Buys {
		if err := b.placeOrder(models.OrderSideBuy, level); err != nil {
			return b.rollback(err)
		}
		log.Infof("Placed buy order @ %s %s", level, quote)
	}
	for _, level := range lad.Sells {
		if err := b.placeOrder(models.OrderSideSell, level); err != nil {
			return b.rollback(err)
		}
		log.Infof("Placed sell order @ %s %s", level, quote)
	}

	return nil
}

func (b *Gridbot) placeOrder(side models.OrderSide, price decimal.Decimal) error {
	order, err := b.client.AddOrder(b.cfg.Pair, models.OrderTypeLimit, side, b.cfg.OrderAmount, price)
	if err != nil {
		return errors.Wrapf(err, "failed to place %s order at %s", side, price)
	}
	if order.OrderID == "" {
		return fmt.Errorf("exchange returned no order id for %s order at %s", side, price)
	}
	for _, tracked := range b.orders {
		if tracked.id == order.OrderID {
			return fmt.Errorf("exchange returned duplicate order id %s", order.OrderID)
		}
	}

	b.orders = append(b.orders, trackedOrder{id: order.OrderID, status: order.Status})
	return nil
}

// rollback cancels every order placed so far and drops the tracked set.
// Cancellation is best effort; ids that could not be cancelled are named
// in the returned error.
func (b *Gridbot) rollback(cause error) error {
	var leaked []string
	for _, tracked := range b.orders {
		if _, err := b.client.CancelOrder(b.cfg.Pair, tracked.id); err != nil {
			log.WithError(err).Errorf("Rollback failed to cancel order %s", tracked.id)
			leaked = append(leaked, tracked.id)
		}
	}
	b.orders = nil

	if len(leaked) > 0 {
		return errors.Wrapf(cause, "initialization aborted; rollback left orders %s open",
			strings.Join(leaked, ", "))
	}
	return errors.Wrap(cause, "initialization aborted; placed orders were cancelled")
}

// Process runs one poll sweep over the tracked orders, retiring those that
// reached a terminal status. The tracked set is only mutated after a fully
// successful sweep: a failed lookup or an inconsistent status aborts the
// sweep and leaves the set untouched. Process never places or cancels
// orders.
func (b *Gridbot) Process() error {
	observed := make([]models.OrderStatus, len(b.orders))
	fills := make([]models.OrderRecord, 0)

	for i, tracked := range b.orders {
		order, err := b.client.GetOrderDetails(tracked.id)
		if err != nil {
			return errors.Wrapf(err, "failed to get details of order %s", tracked.id)
		}
		if !models.ValidTransition(tracked.status, order.Status) {
			return fmt.Errorf("order %s regressed from %s to %s", tracked.id, tracked.status, order.Status)
		}

		observed[i] = order.Status
		if order.Status == models.OrderStatusFilled {
			fills = append(fills, order)
		}
	}

	for _, order := range fills {
		log.Infof("Order %s @ %s was filled", order.OrderID, order.OrderPrice)
		if b.recorder != nil {
			if err := b.recorder.RecordFill(order); err != nil {
				log.WithError(err).Errorf("Failed to record fill of order %s", order.OrderID)
			}
		}
	}

	kept := b.orders[:0]
	for i, tracked := range b.orders {
		if observed[i].Terminal() {
			continue
		}
		tracked.status = observed[i]
		kept = append(kept, tracked)
	}
	b.orders = kept

	return nil
}

// TrackedOrders returns a copy of the ids still being monitored, in
// placement order.
func (b *Gridbot) TrackedOrders() []string {
	ids := make([]string, len(b.orders))
	for i, tracked := range b.orders {
		ids[i] = tracked.id
	}
	return ids
}
