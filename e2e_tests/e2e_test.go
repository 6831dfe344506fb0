package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	timeout   = 5 * time.Second
	waitReady = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

// baseURL points at a running API dedicated to this suite; the suite
// resets its ledger.
func baseURL(t *testing.T) string {
	t.Helper()

	u := os.Getenv("E2E_BASE_URL")
	if u == "" {
		t.Skip("E2E_BASE_URL not set")
	}

	return u
}

type game struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	CoinsSpent       int64   `json:"coinsSpent"`
	CoinsEarned      int64   `json:"coinsEarned"`
	CoinsRecharged   int64   `json:"coinsRecharged"`
	LastRechargeDate string  `json:"lastRechargeDate"`
	NetCoinFlow      int64   `json:"netCoinFlow"`
	ProfitLossUSD    float64 `json:"profitLossUSD"`
}

type totalsResponse struct {
	OK     bool               `json:"ok"`
	Totals map[string]float64 `json:"totals"`
}

//nolint:paralleltest
func TestE2E_LedgerFlow(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	t.Run("reset_zeroes_totals", func(t *testing.T) {
		code, body := call(t, http.MethodPost, base+"/reset", nil)
		if code != http.StatusOK {
			t.Fatalf("reset: want 200, got %d (%s)", code, body)
		}

		var resp totalsResponse
		mustDecode(t, body, &resp)

		for m, v := range resp.Totals {
			if v != 0 {
				t.Fatalf("totals[%s] after reset: %v", m, v)
			}
		}
	})

	t.Run("payments_accumulate", func(t *testing.T) {
		for _, p := range []map[string]any{
			{"amount": 25.004, "method": "cashapp"},
			{"amount": "100", "method": "paypal", "note": "weekly"},
			{"amount": 0.1, "method": "cashapp"},
		} {
			code, body := call(t, http.MethodPost, base+"/payments", p)
			if code != http.StatusCreated {
				t.Fatalf("record %v: want 201, got %d (%s)", p, code, body)
			}
		}

		code, body := call(t, http.MethodGet, base+"/totals", nil)
		if code != http.StatusOK {
			t.Fatalf("totals: want 200, got %d (%s)", code, body)
		}

		var totals map[string]float64
		mustDecode(t, body, &totals)

		if totals["cashapp"] != 25.1 || totals["paypal"] != 100 || totals["chime"] != 0 {
			t.Fatalf("totals: %v", totals)
		}
	})

	t.Run("recalc_matches_incremental", func(t *testing.T) {
		code, body := call(t, http.MethodPost, base+"/recalc", nil)
		if code != http.StatusOK {
			t.Fatalf("recalc: want 200, got %d (%s)", code, body)
		}

		var resp totalsResponse
		mustDecode(t, body, &resp)

		if resp.Totals["cashapp"] != 25.1 || resp.Totals["paypal"] != 100 {
			t.Fatalf("recalc totals: %v", resp.Totals)
		}
	})

	t.Run("invalid_payment_rejected", func(t *testing.T) {
		code, _ := call(t, http.MethodPost, base+"/payments", map[string]any{"amount": -1, "method": "cashapp"})
		if code != http.StatusBadRequest {
			t.Fatalf("negative amount: want 400, got %d", code)
		}

		code, _ = call(t, http.MethodPost, base+"/payments", map[string]any{"amount": 5, "method": "venmo"})
		if code != http.StatusBadRequest {
			t.Fatalf("unknown method: want 400, got %d", code)
		}
	})
}

//nolint:paralleltest
func TestE2E_GameFlow(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	code, body := call(t, http.MethodPost, base+"/games", map[string]any{"name": "Sky Quest"})
	if code != http.StatusCreated {
		t.Fatalf("add: want 201, got %d (%s)", code, body)
	}

	var g game
	mustDecode(t, body, &g)

	path := fmt.Sprintf("%s/games/%d", base, g.ID)

	t.Cleanup(func() {
		_, _ = call(t, http.MethodDelete, path, nil)
	})

	code, body = call(t, http.MethodPut, path, map[string]any{"coinsSpent": 10, "coinsEarned": 30, "coinsRecharged": 0})
	if code != http.StatusOK {
		t.Fatalf("update: want 200, got %d (%s)", code, body)
	}

	mustDecode(t, body, &g)

	if g.CoinsSpent != 10 || g.CoinsEarned != 30 || g.NetCoinFlow != 20 {
		t.Fatalf("after delta: %+v", g)
	}

	code, _ = call(t, http.MethodPut, fmt.Sprintf("%s/games/%d", base, g.ID+1_000_000_000), map[string]any{"coinsSpent": 1})
	if code != http.StatusNotFound {
		t.Fatalf("unknown game: want 404, got %d", code)
	}

	code, body = call(t, http.MethodDelete, path, nil)
	if code != http.StatusOK {
		t.Fatalf("delete: want 200, got %d (%s)", code, body)
	}
}

/* -------------------- helpers -------------------- */

func call(t *testing.T, method, u string, payload any) (int, []byte) {
	t.Helper()

	var rdr io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, u, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, b
}

func mustDecode(t *testing.T, body []byte, dst any) {
	t.Helper()

	err := json.Unmarshal(body, dst)
	if err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

// waitUntilReady polls GET /healthz until it answers 200 or times out.
func waitUntilReady(t *testing.T, base string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", base, waitReady)
		case <-tick.C:
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/healthz", nil)

			resp, err := httpClient.Do(req)
			if err != nil {
				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}
