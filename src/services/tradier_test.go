package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/spread-scanner/src/models"
)

func TestTradierClientQuote(t *testing.T) {
	t.Run("single quote object", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/markets/quotes", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			fmt.Fprint(w, `{"quotes":{"quote":{"symbol":"AAPL","last":187.5,"week_52_high":199.6,"week_52_low":164.1,"prevclose":186.2}}}`)
		}))
		defer server.Close()

		client := NewTradierClient(server.URL, "test-token")

		quote, err := client.Quote(context.Background(), "AAPL")
		require.NoError(t, err)

		assert.Equal(t, models.StockSymbol("AAPL"), quote.Symbol)
		assert.Equal(t, 187.5, quote.Price)
		assert.Equal(t, 199.6, quote.FiftyTwoWeekHigh)
		assert.Equal(t, 164.1, quote.FiftyTwoWeekLow)
	})

	t.Run("quote array", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"quotes":{"quote":[{"symbol":"AAPL","last":187.5}]}}`)
		}))
		defer server.Close()

		client := NewTradierClient(server.URL, "test-token")

		quote, err := client.Quote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, 187.5, quote.Price)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewTradierClient(server.URL, "bad-token")

		_, err := client.Quote(context.Background(), "AAPL")
		assert.Error(t, err)
	})
}

func TestTradierClientExpirations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/markets/options/expirations", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))

		fmt.Fprint(w, `{"expirations":{"date":["2025-01-17","2025-06-20"]}}`)
	}))
	defer server.Close()

	client := NewTradierClient(server.URL, "test-token")

	expirations, err := client.Expirations(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-17", "2025-06-20"}, expirations)
}

func TestTradierClientChain(t *testing.T) {
	expiration := time.Now().AddDate(0, 2, 0).Format("2006-01-02")

	chainBody := fmt.Sprintf(`{"options":{"option":[
		{"symbol":"AAPL250117C00095000","strike":95,"bid":6.8,"ask":7.0,"last":6.9,"volume":500,"open_interest":2000,"option_type":"call","expiration_date":%q,"greeks":{"mid_iv":0.30}},
		{"symbol":"AAPL250117P00095000","strike":95,"bid":2.0,"ask":2.2,"last":2.1,"volume":400,"open_interest":1500,"option_type":"put","expiration_date":%q,"greeks":{"mid_iv":0.32}},
		{"symbol":"BADROW","strike":0,"bid":1,"ask":1.1,"option_type":"call","expiration_date":%q},
		{"symbol":"BADTYPE","strike":100,"bid":1,"ask":1.1,"option_type":"warrant","expiration_date":%q}
	]}}`, expiration, expiration, expiration, expiration)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/markets/options/chains", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("greeks"))

		fmt.Fprint(w, chainBody)
	}))
	defer server.Close()

	client := NewTradierClient(server.URL, "test-token")

	calls, puts, err := client.Chain(context.Background(), "AAPL", expiration, 100)
	require.NoError(t, err)

	require.Len(t, calls, 1, "malformed rows must be skipped")
	require.Len(t, puts, 1)

	call := calls[0]
	assert.Equal(t, models.StockSymbol("AAPL"), call.Underlying)
	assert.Equal(t, 95.0, call.Strike)
	assert.Equal(t, 0.30, call.ImpliedVolatility)
	assert.InDelta(t, 6.9, call.Mid, 1e-9)
	assert.Greater(t, call.Delta, 0.5, "itm call delta")

	put := puts[0]
	assert.Less(t, put.Delta, 0.0, "put delta is negative")
}

func TestNormalizeTradierOption(t *testing.T) {
	expiration := time.Now().AddDate(0, 2, 0)

	t.Run("missing last falls back to mid", func(t *testing.T) {
		row := tradierOptionDTO{
			Symbol:     "AAPL250117C00095000",
			Strike:     95,
			Bid:        6.8,
			Ask:        7.0,
			OptionType: "call",
			Greeks:     &tradierGreeksDTO{MidIV: 0.30},
		}

		quote, ok := normalizeTradierOption(row, "AAPL", expiration, 100, 0.25)
		require.True(t, ok)
		assert.InDelta(t, 6.9, quote.Last, 1e-9)
	})

	t.Run("nil greeks yields zero iv", func(t *testing.T) {
		row := tradierOptionDTO{
			Symbol:     "AAPL250117C00095000",
			Strike:     95,
			Bid:        6.8,
			Ask:        7.0,
			OptionType: "call",
		}

		quote, ok := normalizeTradierOption(row, "AAPL", expiration, 100, 0.25)
		require.True(t, ok)
		assert.Equal(t, 0.0, quote.ImpliedVolatility)
		assert.Equal(t, 0.0, quote.Delta, "degenerate inputs produce zero greeks")
	})
}
