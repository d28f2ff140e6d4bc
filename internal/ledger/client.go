// Package ledger talks to the external append-only stream ledger over
// JSON-RPC. The ledger is treated as a write-once, read-many oracle: streams
// hold hashes published under keys, retrievable in publish order.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultTimeout = 5 * time.Second

// Stream names. One channel per proof family.
const (
	StreamLoanRequests   = "loan_requests"
	StreamLoanAcceptance = "loan_acceptance"
	StreamLoanStatus     = "loan_status"
	StreamLoanAgreements = "loan_agreements"
	StreamTransactions   = "transactions"
	StreamRepayments     = "repayments"
	StreamFeeAllocation  = "fee_allocation"
	StreamKYCResults     = "kyc_results"
	StreamIdentityProofs = "identity_proofs"
)

// Item is one published stream entry. Data carries the hash; the rest is
// block metadata safe for public views.
type Item struct {
	Key           string `json:"key,omitempty"`
	TxID          string `json:"txid"`
	BlockTime     int64  `json:"blocktime"`
	Confirmations int    `json:"confirmations"`
	Data          string `json:"data"`
}

// Fetcher is the read side of the ledger, used by audit and the public
// views. Client satisfies it.
type Fetcher interface {
	FetchKeyItems(ctx context.Context, stream, key string) ([]Item, error)
	FetchLatest(ctx context.Context, stream, key string) (*Item, error)
	FetchAll(ctx context.Context, stream string) ([]Item, error)
}

type rpcRequest struct {
	Method    string `json:"method"`
	Params    []any  `json:"params"`
	ID        int    `json:"id"`
	ChainName string `json:"chain_name"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Client is the JSON-RPC ledger client. Remote calls carry a bounded timeout;
// a timeout is a publication failure, never an application hang.
type Client struct {
	url        string
	user       string
	password   string
	chainName  string
	httpClient *http.Client
}

func NewClient(url, user, password, chainName string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Client{
		url:        strings.TrimRight(url, "/"),
		user:       user,
		password:   password,
		chainName:  chainName,
		httpClient: rc.StandardClient(),
	}
}

func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if c == nil || c.url == "" {
		return nil, fmt.Errorf("ledger client not configured")
	}
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(rpcRequest{Method: method, Params: params, ID: 1, ChainName: c.chainName})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ledger rpc %s: unexpected status %d", method, resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Error) > 0 && string(out.Error) != "null" {
		return nil, fmt.Errorf("ledger rpc %s: %s", method, out.Error)
	}
	return out.Result, nil
}

// Publish appends value under key in the named stream. Append-only: there is
// no update or delete.
func (c *Client) Publish(ctx context.Context, stream, key, value string) error {
	_, err := c.call(ctx, "publish", []any{stream, key, value})
	return err
}

// FetchKeyItems returns all items published under key in the stream, oldest
// first. The latest item is the current truth for the key.
func (c *Client) FetchKeyItems(ctx context.Context, stream, key string) ([]Item, error) {
	raw, err := c.call(ctx, "liststreamkeyitems", []any{stream, key})
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode stream items: %w", err)
	}
	return items, nil
}

// FetchLatest returns the most recent item for key, or (nil, nil) when the
// key has never been published.
func (c *Client) FetchLatest(ctx context.Context, stream, key string) (*Item, error) {
	items, err := c.FetchKeyItems(ctx, stream, key)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[len(items)-1], nil
}

// FetchAll returns the full ordered item list of a stream, used for the
// public read-only views.
func (c *Client) FetchAll(ctx context.Context, stream string) ([]Item, error) {
	raw, err := c.call(ctx, "liststreamitems", []any{stream})
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode stream items: %w", err)
	}
	return items, nil
}
