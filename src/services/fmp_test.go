package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fmpTestServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))

		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		fmt.Fprint(w, body)
	}))
}

func TestFMPClientFundamentals(t *testing.T) {
	t.Run("full record normalization", func(t *testing.T) {
		server := fmpTestServer(t, map[string]string{
			"/profile":     `[{"symbol":"AAPL","companyName":"Apple Inc.","sector":"Technology","industry":"Consumer Electronics","marketCap":2900000000000}]`,
			"/key-metrics": `[{"earningsYield":0.04,"currentRatio":1.1,"returnOnEquity":1.5,"returnOnAssets":0.28,"freeCashFlowYield":0.035}]`,
			"/income-statement": `[
				{"revenue":400000,"grossProfit":180000,"operatingIncome":120000,"netIncome":100000,"eps":6.0},
				{"revenue":380000,"grossProfit":170000,"operatingIncome":110000,"netIncome":95000,"eps":5.0}
			]`,
			"/balance-sheet-statement": `[{"totalDebt":110000,"totalStockholdersEquity":55000}]`,
		})
		defer server.Close()

		client := NewFMPClient(server.URL, "test-key")

		record, err := client.Fundamentals(context.Background(), "AAPL")
		require.NoError(t, err)

		assert.Equal(t, "Apple Inc.", record.CompanyName)
		assert.Equal(t, "Technology", record.Sector)

		require.NotNil(t, record.PERatio)
		assert.InDelta(t, 25.0, *record.PERatio, 1e-9, "pe derived from earnings yield")

		require.NotNil(t, record.RevenueGrowthYoY)
		assert.InDelta(t, 20000.0/380000.0, *record.RevenueGrowthYoY, 1e-9)

		require.NotNil(t, record.EarningsGrowthYoY)
		assert.InDelta(t, 0.2, *record.EarningsGrowthYoY, 1e-9)

		require.NotNil(t, record.GrossMargin)
		assert.InDelta(t, 0.45, *record.GrossMargin, 1e-9)

		require.NotNil(t, record.OperatingMargin)
		assert.InDelta(t, 0.30, *record.OperatingMargin, 1e-9)

		require.NotNil(t, record.DebtToEquity)
		assert.InDelta(t, 2.0, *record.DebtToEquity, 1e-9)

		require.NotNil(t, record.CurrentRatio)
		assert.InDelta(t, 1.1, *record.CurrentRatio, 1e-9)
	})

	t.Run("non-positive earnings yield leaves pe nil", func(t *testing.T) {
		server := fmpTestServer(t, map[string]string{
			"/profile":     `[{"symbol":"AAPL","companyName":"Apple Inc."}]`,
			"/key-metrics": `[{"earningsYield":-0.02}]`,
		})
		defer server.Close()

		client := NewFMPClient(server.URL, "test-key")

		record, err := client.Fundamentals(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Nil(t, record.PERatio)
	})

	t.Run("failed secondary endpoints yield a partial record", func(t *testing.T) {
		server := fmpTestServer(t, map[string]string{
			"/profile": `[{"symbol":"AAPL","companyName":"Apple Inc.","sector":"Technology"}]`,
		})
		defer server.Close()

		client := NewFMPClient(server.URL, "test-key")

		record, err := client.Fundamentals(context.Background(), "AAPL")
		require.NoError(t, err, "secondary endpoint failures must not be fatal")

		assert.Equal(t, "Apple Inc.", record.CompanyName)
		assert.Nil(t, record.PERatio)
		assert.Nil(t, record.GrossMargin)
		assert.Nil(t, record.DebtToEquity)
	})

	t.Run("failed profile endpoint is fatal", func(t *testing.T) {
		server := fmpTestServer(t, map[string]string{})
		defer server.Close()

		client := NewFMPClient(server.URL, "test-key")

		_, err := client.Fundamentals(context.Background(), "AAPL")
		assert.Error(t, err)
	})

	t.Run("single income statement skips growth", func(t *testing.T) {
		server := fmpTestServer(t, map[string]string{
			"/profile":          `[{"symbol":"AAPL"}]`,
			"/income-statement": `[{"revenue":400000,"grossProfit":180000,"operatingIncome":120000,"netIncome":100000,"eps":6.0}]`,
		})
		defer server.Close()

		client := NewFMPClient(server.URL, "test-key")

		record, err := client.Fundamentals(context.Background(), "AAPL")
		require.NoError(t, err)

		assert.Nil(t, record.RevenueGrowthYoY)
		require.NotNil(t, record.GrossMargin)
	})
}

func TestYoyGrowth(t *testing.T) {
	t.Run("zero prior is undefined", func(t *testing.T) {
		_, ok := yoyGrowth(100, 0)
		assert.False(t, ok)
	})

	t.Run("negative prior uses absolute denominator", func(t *testing.T) {
		growth, ok := yoyGrowth(50, -100)
		require.True(t, ok)
		assert.InDelta(t, 1.5, growth, 1e-9)
	})
}
