package proxy

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/Klingon-tech/erdwallet/pkg/tx"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

const (
	aliceSeedHex = "4d6fbfd1fa028afee050068f08c46b95754fd27a06f429b308ba326fff094349"
	aliceBech32  = "erd1zzhmdm2uwv9l7d2ak72c4cv6gek5c797s7qdkfc3jthvrvnxc2jqdsnp9y"
	bobBech32    = "erd1l453hd0gt5gzdp7czpuall8ggt2dcv5zwmfdf3sd3lguxseux2fsmsgldz"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithTimeout(srv.URL+"/", 2*time.Second)
}

func signedTx(t *testing.T) *tx.SignedTransaction {
	t.Helper()
	sender, _ := types.AddressFromBech32(aliceBech32)
	receiver, _ := types.AddressFromBech32(bobBech32)
	seed, _ := hex.DecodeString(aliceSeedHex)
	unsigned := tx.Transaction{
		Value:    big.NewInt(42),
		Receiver: receiver,
		Sender:   sender,
		GasPrice: 1000000000,
		GasLimit: 50000,
		ChainID:  "1",
	}
	s, err := unsigned.SignWithSeed(seed)
	if err != nil {
		t.Fatalf("SignWithSeed() error: %v", err)
	}
	return s
}

func TestClient_GetNetworkConfig(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/network/config" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"data":{"config":{"erd_chain_id":"T","erd_gas_per_data_byte":1500,"erd_min_gas_limit":50000,"erd_min_gas_price":1000000000,"erd_min_transaction_version":1,"erd_num_shards_without_meta":3}},"error":"","code":"successful"}`)
	})

	cfg, err := c.GetNetworkConfig(context.Background())
	if err != nil {
		t.Fatalf("GetNetworkConfig() error: %v", err)
	}
	want := tx.NetworkConfig{
		ChainID:               "T",
		GasPerDataByte:        1500,
		MinGasLimit:           50000,
		MinGasPrice:           1000000000,
		MinTransactionVersion: 1,
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestClient_GetNetworkConfig_MissingConfig(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{},"error":"","code":"successful"}`)
	})
	if _, err := c.GetNetworkConfig(context.Background()); !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestClient_GetAccount(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/address/"+aliceBech32 {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, `{"data":{"account":{"address":"`+aliceBech32+`","nonce":12,"balance":"123456789012345678901234","code":"","username":""}},"error":"","code":"successful"}`)
	})

	addr, _ := types.AddressFromBech32(aliceBech32)
	acct, err := c.GetAccount(context.Background(), addr)
	if err != nil {
		t.Fatalf("GetAccount() error: %v", err)
	}
	if acct.Nonce != 12 {
		t.Errorf("nonce = %d, want 12", acct.Nonce)
	}
	if acct.Balance.String() != "123456789012345678901234" {
		t.Errorf("balance = %s", acct.Balance)
	}
	if acct.Address.String() != aliceBech32 {
		t.Errorf("address = %s", acct.Address)
	}
}

func TestClient_GetAccount_BadBalance(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"account":{"address":"`+aliceBech32+`","nonce":1,"balance":"1.5"}},"error":"","code":"successful"}`)
	})
	addr, _ := types.AddressFromBech32(aliceBech32)
	if _, err := c.GetAccount(context.Background(), addr); !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestClient_GetAccount_UnsetAddress(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an unset address")
	})
	_, err := c.GetAccount(context.Background(), types.Address{})
	if !errors.Is(err, types.ErrEmptyAddress) {
		t.Errorf("error = %v, want ErrEmptyAddress", err)
	}
}

func TestClient_SendTransaction(t *testing.T) {
	signed := signedTx(t)
	want, _ := signed.Serialize()

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/send" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != want {
			t.Errorf("body =\n%s\nwant\n%s", body, want)
		}
		io.WriteString(w, `{"data":{"txHash":"6c41c71946b5b428c2cfb560e1ea425f4a3f3e7fe9ba6e4a5a5ee7d5e1d2fa87"},"error":"","code":"successful"}`)
	})

	hash, err := c.SendTransaction(context.Background(), signed)
	if err != nil {
		t.Fatalf("SendTransaction() error: %v", err)
	}
	if hash != "6c41c71946b5b428c2cfb560e1ea425f4a3f3e7fe9ba6e4a5a5ee7d5e1d2fa87" {
		t.Errorf("hash = %s", hash)
	}
}

func TestClient_SendTransaction_Rejected(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"data":null,"error":"transaction generation failed: invalid signature","code":"bad_request"}`)
	})

	_, err := c.SendTransaction(context.Background(), signedTx(t))
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v, want *NetworkError", err)
	}
	if ne.Status != http.StatusBadRequest || ne.Code != "bad_request" {
		t.Errorf("status/code = %d/%s", ne.Status, ne.Code)
	}
	if !strings.Contains(ne.Message, "invalid signature") {
		t.Errorf("message = %q", ne.Message)
	}
}

func TestClient_GetTransactionStatus(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/abc123/status" {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, `{"data":{"status":"success"},"error":"","code":"successful"}`)
	})

	status, err := c.GetTransactionStatus(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetTransactionStatus() error: %v", err)
	}
	if status != StatusSuccess {
		t.Errorf("status = %q, want %q", status, StatusSuccess)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"envelope error with 200", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"data":null,"error":"account not found","code":"internal_issue"}`)
		}},
		{"500 without json", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, "oops")
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>")
		}},
		{"data of wrong shape", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"data":{"status":7},"error":"","code":"successful"}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testServer(t, tt.handler)
			_, err := c.GetTransactionStatus(context.Background(), "h")
			if !errors.Is(err, ErrNetwork) {
				t.Errorf("error = %v, want ErrNetwork", err)
			}
		})
	}
}

func TestClient_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetNetworkConfig(ctx)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want wrapped context.DeadlineExceeded", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).GetNetworkConfig(context.Background())
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.Status != 0 {
		t.Errorf("error = %v, want transport NetworkError", err)
	}
}

func TestNetworkError_Message(t *testing.T) {
	err := &NetworkError{Op: "GET network/config", Status: 502, Code: "x", Message: "bad gateway"}
	want := "proxy: GET network/config: status 502: code x: bad gateway"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNew_TrimsSlash(t *testing.T) {
	if got := New("http://localhost:7950///").BaseURL(); got != "http://localhost:7950" {
		t.Errorf("BaseURL() = %q", got)
	}
	if c := NewWithTimeout("http://x", 0); c.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.http.Timeout, DefaultTimeout)
	}
}

func TestClient_RateLimit(t *testing.T) {
	var hits atomic.Int32
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{"data":{"status":"pending"},"error":"","code":"successful"}`)
	})
	c.SetRateLimit(1)

	if _, err := c.GetTransactionStatus(context.Background(), "h"); err != nil {
		t.Fatalf("first request error: %v", err)
	}

	// The next token is a second away, past the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := c.GetTransactionStatus(ctx, "h")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestClient_RateLimitDisabled(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"status":"pending"},"error":"","code":"successful"}`)
	})
	c.SetRateLimit(0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 0; i < 3*DefaultRateLimit; i++ {
		if _, err := c.GetTransactionStatus(ctx, "h"); err != nil {
			t.Fatalf("request %d error: %v", i, err)
		}
	}
}

func TestClient_SetRateLimitConcurrent(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"status":"pending"},"error":"","code":"successful"}`)
	})
	limiter := c.limiter

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := c.GetTransactionStatus(ctx, "h"); err != nil {
					t.Errorf("request error: %v", err)
					return
				}
			}
		}()
	}
	for _, r := range []float64{50, 200, 0} {
		c.SetRateLimit(r)
	}
	wg.Wait()

	if c.limiter != limiter {
		t.Error("SetRateLimit replaced the limiter")
	}
	if c.limiter.Limit() != rate.Inf {
		t.Errorf("Limit() = %v, want Inf", c.limiter.Limit())
	}

	c.SetRateLimit(0.5)
	if c.limiter.Limit() != 0.5 || c.limiter.Burst() != 1 {
		t.Errorf("limit = %v burst = %d, want 0.5 and 1", c.limiter.Limit(), c.limiter.Burst())
	}
}
