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

// BinanceClient implements the Binance spot REST surface: an
// X-MBX-APIKEY header plus an HMAC-SHA256-signed query string,
// grounded directly on original_source/src/exchange/binance/order.cpp.
type BinanceClient struct {
	restClient
	signer *auth.HMACSigner
}

// NewBinanceClient builds a client against baseURL (e.g. https://api.binance.com).
func NewBinanceClient(baseURL, accessKey, secretKey string, limiter *ratelimiter.Limiter) *BinanceClient {
	return &BinanceClient{
		restClient: newRestClient(baseURL, limiter),
		signer:     auth.NewHMACSigner(accessKey, secretKey),
	}
}

func (c *BinanceClient) headers() map[string]string {
	return map[string]string{"X-MBX-APIKEY": c.signer.AccessKey()}
}

type binanceOrderResponse struct {
	OrderID       int64  `json:"orderId"`
	Status        string `json:"status"`
	ExecutedQty   string `json:"executedQty"`
	CumulativeQty string `json:"cummulativeQuoteQty"`
}

// PlaceOrder submits an order to POST /api/v3/order.
func (c *BinanceClient) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", req.Side.String())
	if req.Type == domain.Limit {
		params.Set("type", "LIMIT")
		params.Set("timeInForce", "GTC")
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

	var resp binanceOrderResponse
	if err := decodeJSON(data, &resp); err != nil {
		return domain.OrderResult{}, err
	}
	return domain.OrderResult{
		VenueOrderID: strconv.FormatInt(resp.OrderID, 10),
		Status:       binanceStatus(resp.Status),
		FilledQty:    parseFloatSafe(resp.ExecutedQty),
	}, nil
}

// GetOrder fetches a previously placed order by symbol+orderId.
func (c *BinanceClient) GetOrder(ctx context.Context, symbol, orderID string) (domain.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", orderID)

	signed := c.signer.SignQuery(params)
	data, err := c.do(ctx, "GET", "/api/v3/order", signed, nil, c.headers())
	if err != nil {
		return domain.OrderResult{}, err
	}

	var resp binanceOrderResponse
	if err := decodeJSON(data, &resp); err != nil {
		return domain.OrderResult{}, err
	}
	return domain.OrderResult{
		VenueOrderID: strconv.FormatInt(resp.OrderID, 10),
		Status:       binanceStatus(resp.Status),
		FilledQty:    parseFloatSafe(resp.ExecutedQty),
	}, nil
}

// CancelOrder cancels an open order by symbol+orderId.
func (c *BinanceClient) CancelOrder(ctx context.Context, symbol, orderID string) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", orderID)

	signed := c.signer.SignQuery(params)
	_, err := c.do(ctx, "DELETE", "/api/v3/order", signed, nil, c.headers())
	return err
}

// GetBalance returns the free/locked balance of asset from the account snapshot.
func (c *BinanceClient) GetBalance(ctx context.Context, asset string) (domain.Balance, error) {
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

// Withdraw submits a coin withdrawal via POST /sapi/v1/capital/withdraw/apply.
func (c *BinanceClient) Withdraw(ctx context.Context, req domain.TransferRequest) (string, error) {
	params := url.Values{}
	params.Set("coin", req.Coin)
	params.Set("address", req.Address)
	params.Set("amount", strconv.FormatFloat(req.Amount, 'f', -1, 64))
	if req.Memo != "" {
		params.Set("addressTag", req.Memo)
	}

	signed := c.signer.SignQuery(params)
	data, err := c.do(ctx, "POST", "/sapi/v1/capital/withdraw/apply", signed, nil, c.headers())
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

// WithdrawStatus polls GET /sapi/v1/capital/withdraw/history for the
// record matching venueTransferID.
func (c *BinanceClient) WithdrawStatus(ctx context.Context, venueTransferID string) (transfer.WithdrawStatus, error) {
	signed := c.signer.SignQuery(url.Values{})
	data, err := c.do(ctx, "GET", "/sapi/v1/capital/withdraw/history", signed, nil, c.headers())
	if err != nil {
		return transfer.WithdrawStatus{}, err
	}

	var records []struct {
		ID             string `json:"id"`
		TxID           string `json:"txId"`
		Status         int    `json:"status"`
		TransactionFee string `json:"transactionFee"`
	}
	if err := decodeJSON(data, &records); err != nil {
		return transfer.WithdrawStatus{}, err
	}
	for _, r := range records {
		if r.ID == venueTransferID {
			return transfer.WithdrawStatus{
				Status: binanceWithdrawStatus(r.Status),
				TxHash: r.TxID,
				Fee:    parseFloatSafe(r.TransactionFee),
			}, nil
		}
	}
	return transfer.WithdrawStatus{Status: domain.TransferProcessing}, nil
}

func binanceStatus(status string) domain.OrderStatus {
	switch status {
	case "NEW":
		return domain.Open
	case "PARTIALLY_FILLED":
		return domain.PartiallyFilled
	case "FILLED":
		return domain.Filled
	case "CANCELED", "EXPIRED":
		return domain.Canceled
	case "REJECTED":
		return domain.Failed
	default:
		return domain.Pending
	}
}

// binanceWithdrawStatus maps Binance's numeric withdraw status codes:
// 0 email sent, 1 canceled, 2 awaiting approval, 3 rejected,
// 4 processing, 5 failure, 6 completed.
func binanceWithdrawStatus(status int) domain.TransferStatus {
	switch status {
	case 0, 2:
		return domain.TransferPending
	case 1:
		return domain.TransferCancelled
	case 3, 5:
		return domain.TransferFailed
	case 4:
		return domain.TransferProcessing
	case 6:
		return domain.TransferCompleted
	default:
		return domain.TransferPending
	}
}
