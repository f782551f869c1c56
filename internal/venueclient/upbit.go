package venueclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/s2ungeda/kac/internal/auth"
	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/errkind"
	"github.com/s2ungeda/kac/internal/transfer"
	"github.com/s2ungeda/kac/pkg/ratelimiter"
)

// UpbitClient implements the Upbit REST surface: JWT-bearer auth over
// a query-string-as-payload convention, grounded on
// original_source/src/exchange/upbit/order.cpp.
type UpbitClient struct {
	restClient
	signer *auth.JWTSigner
}

// NewUpbitClient builds a client against baseURL (e.g. https://api.upbit.com).
func NewUpbitClient(baseURL, accessKey, secretKey string, limiter *ratelimiter.Limiter) *UpbitClient {
	return &UpbitClient{
		restClient: newRestClient(baseURL, limiter),
		signer:     auth.NewJWTSigner(accessKey, secretKey),
	}
}

func (c *UpbitClient) authHeader(query url.Values) (map[string]string, error) {
	token, err := c.signer.Token(query.Encode())
	if err != nil {
		return nil, errkind.Auth("build jwt", err)
	}
	return map[string]string{"Authorization": token}, nil
}

type upbitOrderResponse struct {
	UUID  string `json:"uuid"`
	State string `json:"state"`
}

// PlaceOrder submits a limit or market order to POST /v1/orders.
func (c *UpbitClient) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	params := url.Values{}
	params.Set("market", req.Symbol)
	if req.Side == domain.Buy {
		params.Set("side", "bid")
	} else {
		params.Set("side", "ask")
	}
	if req.Type == domain.Limit {
		params.Set("ord_type", "limit")
		params.Set("price", strconv.FormatFloat(req.LimitPrice, 'f', -1, 64))
		params.Set("volume", strconv.FormatFloat(req.Quantity, 'f', -1, 64))
	} else {
		params.Set("ord_type", "market")
		params.Set("volume", strconv.FormatFloat(req.Quantity, 'f', -1, 64))
	}
	if req.ClientOrderID != "" {
		params.Set("identifier", req.ClientOrderID)
	}

	headers, err := c.authHeader(params)
	if err != nil {
		return domain.OrderResult{}, err
	}
	headers["Content-Type"] = "application/x-www-form-urlencoded"

	data, err := c.do(ctx, "POST", "/v1/orders", "", formEncode(params), headers)
	if err != nil {
		return domain.OrderResult{}, err
	}

	var resp upbitOrderResponse
	if err := decodeJSON(data, &resp); err != nil {
		return domain.OrderResult{}, err
	}
	return domain.OrderResult{VenueOrderID: resp.UUID, Status: domain.Pending}, nil
}

// GetOrder fetches a previously placed order by Upbit's uuid.
func (c *UpbitClient) GetOrder(ctx context.Context, orderID string) (domain.OrderResult, error) {
	params := url.Values{"uuid": {orderID}}
	headers, err := c.authHeader(params)
	if err != nil {
		return domain.OrderResult{}, err
	}

	data, err := c.do(ctx, "GET", "/v1/order", params.Encode(), nil, headers)
	if err != nil {
		return domain.OrderResult{}, err
	}

	var resp struct {
		UUID           string `json:"uuid"`
		State          string `json:"state"`
		ExecutedVolume string `json:"executed_volume"`
		Price          string `json:"price"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return domain.OrderResult{}, err
	}
	return domain.OrderResult{
		VenueOrderID: resp.UUID,
		Status:       upbitState(resp.State),
		FilledQty:    parseFloatSafe(resp.ExecutedVolume),
		AvgPrice:     parseFloatSafe(resp.Price),
	}, nil
}

// CancelOrder cancels an open order.
func (c *UpbitClient) CancelOrder(ctx context.Context, orderID string) error {
	params := url.Values{"uuid": {orderID}}
	headers, err := c.authHeader(params)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "DELETE", "/v1/order", params.Encode(), nil, headers)
	return err
}

// GetBalance returns the available/locked balance of currency.
func (c *UpbitClient) GetBalance(ctx context.Context, currency string) (domain.Balance, error) {
	headers, err := c.authHeader(url.Values{})
	if err != nil {
		return domain.Balance{}, err
	}
	data, err := c.do(ctx, "GET", "/v1/accounts", "", nil, headers)
	if err != nil {
		return domain.Balance{}, err
	}

	var accounts []struct {
		Currency string `json:"currency"`
		Balance  string `json:"balance"`
		Locked   string `json:"locked"`
	}
	if err := decodeJSON(data, &accounts); err != nil {
		return domain.Balance{}, err
	}
	for _, a := range accounts {
		if a.Currency == currency {
			return domain.Balance{Currency: currency, Available: parseFloatSafe(a.Balance), Locked: parseFloatSafe(a.Locked)}, nil
		}
	}
	return domain.Balance{Currency: currency}, nil
}

// Withdraw submits a coin withdrawal and returns Upbit's withdraw uuid.
func (c *UpbitClient) Withdraw(ctx context.Context, req domain.TransferRequest) (string, error) {
	params := url.Values{}
	params.Set("currency", req.Coin)
	params.Set("amount", strconv.FormatFloat(req.Amount, 'f', -1, 64))
	params.Set("address", req.Address)
	if req.Memo != "" {
		params.Set("secondary_address", req.Memo)
	}

	headers, err := c.authHeader(params)
	if err != nil {
		return "", err
	}
	headers["Content-Type"] = "application/x-www-form-urlencoded"

	data, err := c.do(ctx, "POST", "/v1/withdraws/coin", "", formEncode(params), headers)
	if err != nil {
		return "", err
	}

	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return "", err
	}
	return resp.UUID, nil
}

// WithdrawStatus polls the current state of a submitted withdraw.
func (c *UpbitClient) WithdrawStatus(ctx context.Context, venueTransferID string) (transfer.WithdrawStatus, error) {
	params := url.Values{"uuid": {venueTransferID}}
	headers, err := c.authHeader(params)
	if err != nil {
		return transfer.WithdrawStatus{}, err
	}

	data, err := c.do(ctx, "GET", "/v1/withdraw", params.Encode(), nil, headers)
	if err != nil {
		return transfer.WithdrawStatus{}, err
	}

	var resp struct {
		State  string `json:"state"`
		TxID   string `json:"txid"`
		Amount string `json:"amount"`
		Fee    string `json:"fee"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return transfer.WithdrawStatus{}, err
	}
	return transfer.WithdrawStatus{
		Status: upbitWithdrawState(resp.State),
		TxHash: resp.TxID,
		Fee:    parseFloatSafe(resp.Fee),
	}, nil
}

func upbitState(state string) domain.OrderStatus {
	switch state {
	case "wait", "watch":
		return domain.Open
	case "done":
		return domain.Filled
	case "cancel":
		return domain.Canceled
	default:
		return domain.Pending
	}
}

func upbitWithdrawState(state string) domain.TransferStatus {
	switch state {
	case "submitting", "submitted", "almost_accepted":
		return domain.TransferPending
	case "accepted", "processing":
		return domain.TransferProcessing
	case "done":
		return domain.TransferCompleted
	case "canceled":
		return domain.TransferCancelled
	case "rejected":
		return domain.TransferFailed
	default:
		return domain.TransferPending
	}
}

// parseFloatSafe parses a venue-returned numeric string (price, qty,
// balance, fee) via decimal.Decimal rather than strconv.ParseFloat
// directly, so a string with more significant digits than float64's
// mantissa holds doesn't pick up binary-rounding noise before it even
// reaches the rest of the pipeline. Returns 0 on empty or unparseable
// input rather than propagating an error, matching every call site's
// best-effort field-mapping style.
func parseFloatSafe(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
