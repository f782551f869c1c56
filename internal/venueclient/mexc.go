package venueclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/s2ungeda/kac/internal/auth"
	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/transfer"
	"github.com/s2ungeda/kac/pkg/ratelimiter"
)

// MexcClient implements the MEXC spot REST surface, the same
// key+HMAC-signed-querystring convention as Binance (MEXC's spot REST
// API is itself a close derivative of Binance's).
type MexcClient struct {
	restClient
	signer *auth.HMACSigner
}

// NewMexcClient builds a client against baseURL (e.g. https://api.mexc.com).
func NewMexcClient(baseURL, accessKey, secretKey string, limiter *ratelimiter.Limiter) *MexcClient {
	return &MexcClient{
		restClient: newRestClient(baseURL, limiter),
		signer:     auth.NewHMACSigner(accessKey, secretKey),
	}
}

func (c *MexcClient) headers() map[string]string {
	return map[string]string{"X-MBX-APIKEY": c.signer.AccessKey()}
}

// PlaceOrder submits an order to POST /api/v3/order.
func (c *MexcClient) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", req.Side.String())
	if req.Type == domain.Limit {
		params.Set("type", "LIMIT")
		params.Set("price", strconv.FormatFloat(req.LimitPrice, 'f', -1, 64))
	} else {
		params.Set("type", "MARKET")
	}
	params.Set("quantity", strconv.FormatFloat(req.Quantity, 'f', -1, 64))
	if req.ClientOrderID != "" {
		params.Set("newClientOrderId", req.ClientOrderID)
	}

	signed := c.signer.SignQuery(params)
	data, err := c.do(ctx, "POST", "/api/v3/order", signed, nil, c.headers())
	if err != nil {
		return domain.OrderResult{}, err
	}

	var resp struct {
		OrderID     string `json:"orderId"`
		Status      string `json:"status"`
		ExecutedQty string `json:"executedQty"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return domain.OrderResult{}, err
	}
	return domain.OrderResult{
		VenueOrderID: resp.OrderID,
		Status:       binanceStatus(resp.Status),
		FilledQty:    parseFloatSafe(resp.ExecutedQty),
	}, nil
}

// GetOrder fetches a previously placed order by symbol+orderId.
func (c *MexcClient) GetOrder(ctx context.Context, symbol, orderID string) (domain.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", orderID)

	signed := c.signer.SignQuery(params)
	data, err := c.do(ctx, "GET", "/api/v3/order", signed, nil, c.headers())
	if err != nil {
		return domain.OrderResult{}, err
	}

	var resp struct {
		OrderID     string `json:"orderId"`
		Status      string `json:"status"`
		ExecutedQty string `json:"executedQty"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return domain.OrderResult{}, err
	}
	return domain.OrderResult{
		VenueOrderID: resp.OrderID,
		Status:       binanceStatus(resp.Status),
		FilledQty:    parseFloatSafe(resp.ExecutedQty),
	}, nil
}

// CancelOrder cancels an open order by symbol+orderId.
func (c *MexcClient) CancelOrder(ctx context.Context, symbol, orderID string) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", orderID)

	signed := c.signer.SignQuery(params)
	_, err := c.do(ctx, "DELETE", "/api/v3/order", signed, nil, c.headers())
	return err
}

// GetBalance returns the free/locked balance of asset.
func (c *MexcClient) GetBalance(ctx context.Context, asset string) (domain.Balance, error) {
	signed := c.signer.SignQuery(url.Values{})
	data, err := c.do(ctx, "GET", "/api/v3/account", signed, nil, c.headers())
	if err != nil {
		return domain.Balance{}, err
	}

	var resp struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return domain.Balance{}, err
	}
	for _, b := range resp.Balances {
		if b.Asset == asset {
			return domain.Balance{Currency: asset, Available: parseFloatSafe(b.Free), Locked: parseFloatSafe(b.Locked)}, nil
		}
	}
	return domain.Balance{Currency: asset}, nil
}

// Withdraw submits a coin withdrawal via POST /api/v3/capital/withdraw/apply.
func (c *MexcClient) Withdraw(ctx context.Context, req domain.TransferRequest) (string, error) {
	params := url.Values{}
	params.Set("coin", req.Coin)
	params.Set("address", req.Address)
	params.Set("amount", strconv.FormatFloat(req.Amount, 'f', -1, 64))
	if req.Memo != "" {
		params.Set("memo", req.Memo)
	}

	signed := c.signer.SignQuery(params)
	data, err := c.do(ctx, "POST", "/api/v3/capital/withdraw/apply", signed, nil, c.headers())
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(data, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// WithdrawStatus polls GET /api/v3/capital/withdraw/history for the
// record matching venueTransferID.
func (c *MexcClient) WithdrawStatus(ctx context.Context, venueTransferID string) (transfer.WithdrawStatus, error) {
	signed := c.signer.SignQuery(url.Values{})
	data, err := c.do(ctx, "GET", "/api/v3/capital/withdraw/history", signed, nil, c.headers())
	if err != nil {
		return transfer.WithdrawStatus{}, err
	}

	var records []struct {
		ID     string `json:"id"`
		TxID   string `json:"txId"`
		Status string `json:"status"`
		Fee    string `json:"transactionFee"`
	}
	if err := decodeJSON(data, &records); err != nil {
		return transfer.WithdrawStatus{}, err
	}
	for _, r := range records {
		if r.ID == venueTransferID {
			return transfer.WithdrawStatus{
				Status: mexcWithdrawStatus(r.Status),
				TxHash: r.TxID,
				Fee:    parseFloatSafe(r.Fee),
			}, nil
		}
	}
	return transfer.WithdrawStatus{Status: domain.TransferProcessing}, nil
}

func mexcWithdrawStatus(status string) domain.TransferStatus {
	switch status {
	case "APPLY", "AUDITING", "WAIT":
		return domain.TransferPending
	case "PROCESSING", "WAIT_PACKAGING":
		return domain.TransferProcessing
	case "SUCCESS":
		return domain.TransferCompleted
	case "FAILED", "REJECTED":
		return domain.TransferFailed
	case "CANCEL":
		return domain.TransferCancelled
	default:
		return domain.TransferPending
	}
}
