// Package proxy is an HTTP client for the network's REST gateway.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Klingon-tech/erdwallet/internal/log"
	"github.com/Klingon-tech/erdwallet/pkg/tx"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// DefaultTimeout bounds every request when no timeout is given.
const DefaultTimeout = 10 * time.Second

// DefaultRateLimit is the request rate allowed per second. Public gateways
// throttle aggressive clients.
const DefaultRateLimit = 10

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 8 << 20

const (
	networkConfigEndpoint = "network/config"
	accountEndpoint       = "address/%s"
	sendEndpoint          = "transaction/send"
	statusEndpoint        = "transaction/%s/status"
)

// Client talks to a proxy at a base URL such as https://gateway.example.com.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a client with the default timeout.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout)
}

// NewWithTimeout creates a client with a custom HTTP timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
}

// SetRateLimit caps requests per second. Zero disables the limit. It is
// safe to call while requests are in flight.
func (c *Client) SetRateLimit(perSecond float64) {
	if perSecond <= 0 {
		c.limiter.SetLimit(rate.Inf)
		return
	}
	c.limiter.SetBurst(max(int(perSecond), 1))
	c.limiter.SetLimit(rate.Limit(perSecond))
}

// BaseURL returns the proxy URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetNetworkConfig fetches the chain rules.
func (c *Client) GetNetworkConfig(ctx context.Context) (tx.NetworkConfig, error) {
	var data networkConfigData
	if err := c.do(ctx, http.MethodGet, networkConfigEndpoint, nil, &data); err != nil {
		return tx.NetworkConfig{}, err
	}
	if data.Config == nil {
		return tx.NetworkConfig{}, &NetworkError{Op: "GET " + networkConfigEndpoint, Message: "response has no config"}
	}
	return *data.Config, nil
}

// GetAccount fetches nonce and balance for addr.
func (c *Client) GetAccount(ctx context.Context, addr types.Address) (*Account, error) {
	bech, err := addr.Bech32()
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf(accountEndpoint, bech)

	var data accountData
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &data); err != nil {
		return nil, err
	}
	if data.Account == nil {
		return nil, &NetworkError{Op: "GET " + endpoint, Message: "response has no account"}
	}
	acct, err := data.Account.toAccount()
	if err != nil {
		return nil, &NetworkError{Op: "GET " + endpoint, Err: err}
	}
	return acct, nil
}

// SendTransaction broadcasts a signed transaction and returns the network
// transaction hash.
func (c *Client) SendTransaction(ctx context.Context, signed *tx.SignedTransaction) (string, error) {
	payload, err := signed.Serialize()
	if err != nil {
		return "", err
	}

	var data sendData
	if err := c.do(ctx, http.MethodPost, sendEndpoint, []byte(payload), &data); err != nil {
		return "", err
	}
	if data.TxHash == "" {
		return "", &NetworkError{Op: "POST " + sendEndpoint, Message: "response has no txHash"}
	}
	log.Proxy.Debug().Str("tx_hash", data.TxHash).Msg("Transaction accepted by proxy")
	return data.TxHash, nil
}

// GetTransactionStatus returns the proxy's status string for a network
// transaction hash (see the Status* constants).
func (c *Client) GetTransactionStatus(ctx context.Context, txHash string) (string, error) {
	endpoint := fmt.Sprintf(statusEndpoint, url.PathEscape(txHash))

	var data statusData
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &data); err != nil {
		return "", err
	}
	return data.Status, nil
}

// do performs one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	op := method + " " + endpoint

	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, reader)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	log.Proxy.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Proxy request")

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ne := &NetworkError{Op: op, Status: resp.StatusCode}
		if decodeErr == nil {
			ne.Code, ne.Message = env.Code, env.Error
		}
		return ne
	}
	if decodeErr != nil {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if env.Error != "" {
		return &NetworkError{Op: op, Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}
