package venueclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/s2ungeda/kac/internal/auth"
	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/errkind"
	"github.com/s2ungeda/kac/internal/transfer"
	"github.com/s2ungeda/kac/pkg/ratelimiter"
)

// BithumbClient implements the Bithumb v2 REST surface. Bithumb's v2
// API adopted the same JWT-bearer-over-query-hash convention Upbit
// uses (no original_source REST reference exists for Bithumb, only its
// websocket client, so the endpoint/auth shape here follows Upbit's
// order.cpp directly, per the shared auth style SPEC_FULL.md §6 names
// for both venues).
type BithumbClient struct {
	restClient
	signer *auth.JWTSigner
}

// NewBithumbClient builds a client against baseURL (e.g. https://api.bithumb.com).
func NewBithumbClient(baseURL, accessKey, secretKey string, limiter *ratelimiter.Limiter) *BithumbClient {
	return &BithumbClient{
		restClient: newRestClient(baseURL, limiter),
		signer:     auth.NewJWTSigner(accessKey, secretKey),
	}
}

func (c *BithumbClient) authHeader(query url.Values) (map[string]string, error) {
	token, err := c.signer.Token(query.Encode())
	if err != nil {
		return nil, errkind.Auth("build jwt", err)
	}
	return map[string]string{"Authorization": token}, nil
}

// PlaceOrder submits a limit or market order to POST /v1/orders.
func (c *BithumbClient) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
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

	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return domain.OrderResult{}, err
	}
	return domain.OrderResult{VenueOrderID: resp.UUID, Status: domain.Pending}, nil
}

// GetOrder fetches a previously placed order by uuid.
func (c *BithumbClient) GetOrder(ctx context.Context, orderID string) (domain.OrderResult, error) {
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
func (c *BithumbClient) CancelOrder(ctx context.Context, orderID string) error {
	params := url.Values{"uuid": {orderID}}
	headers, err := c.authHeader(params)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "DELETE", "/v1/order", params.Encode(), nil, headers)
	return err
}

// GetBalance returns the available/locked balance of currency.
func (c *BithumbClient) GetBalance(ctx context.Context, currency string) (domain.Balance, error) {
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

// Withdraw submits a coin withdrawal and returns Bithumb's withdraw uuid.
func (c *BithumbClient) Withdraw(ctx context.Context, req domain.TransferRequest) (string, error) {
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
func (c *BithumbClient) WithdrawStatus(ctx context.Context, venueTransferID string) (transfer.WithdrawStatus, error) {
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
		State string `json:"state"`
		TxID  string `json:"txid"`
		Fee   string `json:"fee"`
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
