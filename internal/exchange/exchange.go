package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gridbot/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

const (
	defaultBaseURL = "https://trade.coss.io"
	requestTimeout = 30 * time.Second

	balancesPath     = "/c/api/v1/account/balances"
	marketPricePath  = "/c/api/v1/market-price"
	orderListPath    = "/c/api/v1/order/list/all"
	orderDetailsPath = "/c/api/v1/order/details"
	orderAddPath     = "/c/api/v1/order/add/"
	orderCancelPath  = "/c/api/v1/order/cancel"

	// Pagination defaults for the order list endpoint.
	orderListLimit      = 50
	orderListRecvWindow = 5000

	// Order size and price are serialized with a fixed number of
	// fractional digits.
	quantityPrecision = 3
)

// Credentials hold the account's API key pair. They are supplied once at
// construction and never mutated.
type Credentials struct {
	PublicKey string
	SecretKey string
}

// Client executes signed requests against the exchange REST API. Every
// operation performs exactly one network round trip; there are no retries
// and no caching.
type Client struct {
	creds Credentials
	http  *resty.Client
}

// New returns a client for the production endpoint.
func New(creds Credentials) *Client {
	rc := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(requestTimeout)
	return NewWithHTTP(creds, rc)
}

// NewWithHTTP returns a client using the given resty client, which carries
// the base URL, timeout and transport. Tests point it at a fake server.
func NewWithHTTP(creds Credentials, rc *resty.Client) *Client {
	return &Client{creds: creds, http: rc}
}

// Sign returns the hex-encoded HMAC-SHA256 of payload under the account's
// secret key. The same payload always yields the same signature.
func (c *Client) Sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.creds.SecretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func timestamp() string {
	return fmt.Sprintf("%d", time.Now().UnixMilli())
}

func (c *Client) authHeaders(payload string) map[string]string {
	return map[string]string{
		"Content-Type":     "application/json",
		"X-Requested-With": "XMLHttpRequest",
		"Authorization":    c.creds.PublicKey,
		"Signature":        c.Sign(payload),
	}
}

// signedGet signs "timestamp=<ms>" and sends the parameters, including that
// same timestamp, as query parameters.
func (c *Client) signedGet(path string, params map[string]string, out interface{}) error {
	ts := timestamp()
	req := c.http.R().
		SetHeaders(c.authHeaders("timestamp=" + ts)).
		SetQueryParams(params).
		SetQueryParam("timestamp", ts)

	resp, err := req.Get(path)
	return decodeResponse(resp, err, out)
}

// signedSend marshals body, signs the literal JSON string and sends that
// exact string as the request body.
func (c *Client) signedSend(method, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %v", err)
	}

	resp, err := c.http.R().
		SetHeaders(c.authHeaders(string(payload))).
		SetBody(payload).
		Execute(method, path)
	return decodeResponse(resp, err, out)
}

func decodeResponse(resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %v", err)
	}
	if resp.IsError() {
		return fmt.Errorf("request failed with status code: %d, body: %s",
			resp.StatusCode(), resp.String())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

// GetBalances fetches every balance entry of the account.
func (c *Client) GetBalances() ([]models.Asset, error) {
	var balances []models.Asset
	if err := c.signedGet(balancesPath, nil, &balances); err != nil {
		return nil, fmt.Errorf("failed to get balances: %v", err)
	}
	return balances, nil
}

// GetBalance returns the balance entry for the given currency code. An
// account holding none of the currency yields the zero-valued sentinel,
// not an error.
func (c *Client) GetBalance(currency string) (models.Asset, error) {
	balances, err := c.GetBalances()
	if err != nil {
		return models.Asset{}, err
	}

	for _, asset := range balances {
		if asset.CurrencyCode == currency {
			return asset, nil
		}
	}
	return models.ZeroAsset(currency), nil
}

// GetAvailableBalance returns the available amount of the given currency.
// Every failure mode collapses to zero, so callers cannot distinguish an
// empty balance from a failed lookup. Failures are logged here instead.
func (c *Client) GetAvailableBalance(currency string) decimal.Decimal {
	asset, err := c.GetBalance(currency)
	if err != nil {
		log.WithError(err).Warnf("Treating %s balance as zero", currency)
		return decimal.Zero
	}

	available, err := decimal.NewFromString(asset.Available)
	if err != nil {
		log.WithError(err).Warnf("Unparsable %s balance %q, treating as zero", currency, asset.Available)
		return decimal.Zero
	}
	return available
}

// GetMarketPrice returns the current price of the pair, taken from the
// first element of the price list the exchange returns.
func (c *Client) GetMarketPrice(pair string) (decimal.Decimal, error) {
	var prices []models.Price
	err := c.signedGet(marketPricePath, map[string]string{"symbol": pair}, &prices)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get market price: %v", err)
	}
	if len(prices) == 0 {
		return decimal.Zero, fmt.Errorf("no market price returned for %s", pair)
	}

	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse market price %q: %v", prices[0].Price, err)
	}
	return price, nil
}

type listOrdersRequest struct {
	Symbol     string  `json:"symbol"`
	FromID     *string `json:"from_id"`
	Limit      int     `json:"limit"`
	RecvWindow int     `json:"recvWindow"`
	Timestamp  string  `json:"timestamp"`
}

// ListOrders fetches the orders of the pair, first page only.
func (c *Client) ListOrders(pair string) ([]models.OrderRecord, error) {
	body := listOrdersRequest{
		Symbol:     pair,
		FromID:     nil,
		Limit:      orderListLimit,
		RecvWindow: orderListRecvWindow,
		Timestamp:  timestamp(),
	}

	var orders []models.OrderRecord
	if err := c.signedSend(resty.MethodPost, orderListPath, body, &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %v", err)
	}
	return orders, nil
}

type orderDetailsRequest struct {
	OrderID   string `json:"order_id"`
	Timestamp string `json:"timestamp"`
}

// GetOrderDetails fetches the current state of a single order.
func (c *Client) GetOrderDetails(orderID string) (models.OrderRecord, error) {
	body := orderDetailsRequest{OrderID: orderID, Timestamp: timestamp()}

	var order models.OrderRecord
	if err := c.signedSend(resty.MethodPost, orderDetailsPath, body, &order); err != nil {
		return models.OrderRecord{}, fmt.Errorf("failed to get details of order %s: %v", orderID, err)
	}
	return order, nil
}

type addOrderRequest struct {
	OrderSymbol string `json:"order_symbol"`
	OrderSide   string `json:"order_side"`
	Type        string `json:"type"`
	OrderSize   string `json:"order_size"`
	OrderPrice  string `json:"order_price"`
	Timestamp   string `json:"timestamp"`
}

// AddOrder submits a new order and returns the exchange's record of it,
// including the assigned order id.
func (c *Client) AddOrder(pair string, typ models.OrderType, side models.OrderSide, size, price decimal.Decimal) (models.OrderRecord, error) {
	body := addOrderRequest{
		OrderSymbol: pair,
		OrderSide:   string(side),
		Type:        string(typ),
		OrderSize:   size.StringFixed(quantityPrecision),
		OrderPrice:  price.StringFixed(quantityPrecision),
		Timestamp:   timestamp(),
	}

	var order models.OrderRecord
	if err := c.signedSend(resty.MethodPost, orderAddPath, body, &order); err != nil {
		return models.OrderRecord{}, fmt.Errorf("failed to add %s order at %s: %v", side, price, err)
	}
	return order, nil
}

type cancelOrderRequest struct {
	OrderSymbol string `json:"order_symbol"`
	OrderID     string `json:"order_id"`
	Timestamp   string `json:"timestamp"`
}

// CancelOrder requests cancellation of an order.
func (c *Client) CancelOrder(pair, orderID string) (models.CancelResult, error) {
	body := cancelOrderRequest{OrderSymbol: pair, OrderID: orderID, Timestamp: timestamp()}

	var result models.CancelResult
	if err := c.signedSend(resty.MethodDelete, orderCancelPath, body, &result); err != nil {
		return models.CancelResult{}, fmt.Errorf("failed to cancel order %s: %v", orderID, err)
	}
	return result, nil
}
