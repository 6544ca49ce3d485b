package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malusev998/currency-quotes"
)

func testDataset() currency.Dataset {
	return currency.Dataset{Tables: []currency.Table{
		{
			Date: time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC),
			Quotes: []currency.Quote{
				{Date: "04/07/2024", Code: "220", Type: currency.TypeA, Name: "USD", USDValue: 5, BRLValue: 25.5},
				{Date: "04/07/2024", Code: "978", Type: currency.TypeB, Name: "EUR", USDValue: 5.832, BRLValue: 29.7},
			},
		},
		{
			Date: time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC),
			Quotes: []currency.Quote{
				{Date: "03/07/2024", Code: "220", Type: currency.TypeA, Name: "USD", USDValue: 5.2, BRLValue: 27.56},
			},
		},
	}}
}

type seriesResponse struct {
	Currency string           `json:"currency"`
	Value    string           `json:"value"`
	Points   []currency.Point `json:"points"`
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func TestSeriesEndpoint(t *testing.T) {
	t.Parallel()
	server := NewServer(testDataset())

	t.Run("DefaultsToFirstCurrencyAndBRL", func(t *testing.T) {
		rr := get(t, server, "/api/series")
		require.Equal(t, http.StatusOK, rr.Code)

		var body seriesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "USD", body.Currency)
		assert.Equal(t, currency.ColumnBRLValue, body.Value)
		assert.Equal(t, []currency.Point{
			{Date: "03/07/2024", Value: 27.56},
			{Date: "04/07/2024", Value: 25.5},
		}, body.Points)
	})

	t.Run("SelectedCurrencyAndUSD", func(t *testing.T) {
		rr := get(t, server, "/api/series?currency=EUR&value=Valor+em+US%24")
		require.Equal(t, http.StatusOK, rr.Code)

		var body seriesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, []currency.Point{{Date: "04/07/2024", Value: 5.832}}, body.Points)
	})

	t.Run("UnknownColumn", func(t *testing.T) {
		rr := get(t, server, "/api/series?value=Taxa+Compra")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("UnknownCurrencyIsEmpty", func(t *testing.T) {
		rr := get(t, server, "/api/series?currency=XYZ")
		require.Equal(t, http.StatusOK, rr.Code)

		var body seriesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Empty(t, body.Points)
	})
}

func TestPage(t *testing.T) {
	t.Parallel()
	server := NewServer(testDataset())

	rr := get(t, server, "/")
	require.Equal(t, http.StatusOK, rr.Code)

	html := rr.Body.String()
	assert.Contains(t, html, `<option value="USD" selected>USD</option>`)
	assert.Contains(t, html, `<option value="EUR">EUR</option>`)
	assert.Contains(t, html, `<option value="Valor em R$" selected>Valor em R$</option>`)
	assert.Contains(t, html, `/chart?currency=USD`)
}

func TestChartEndpoint(t *testing.T) {
	t.Parallel()
	server := NewServer(testDataset())

	rr := get(t, server, "/chart?currency=USD")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Valor da USD ao longo do tempo")
	assert.Contains(t, rr.Body.String(), "03/07/2024")

	rr = get(t, server, "/chart?value=nope")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "EUR", currency.ColumnUSDValue, []currency.Point{{Date: "04/07/2024", Value: 5.832}}))
	assert.Contains(t, buf.String(), Title("EUR"))
	assert.Contains(t, buf.String(), "5.832")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rr := get(t, NewServer(currency.Dataset{}), "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- NewServer(testDataset()).ListenAndServe(ctx, "127.0.0.1:0")
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
