package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*APIClient, *countingNotifier, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	n := &countingNotifier{}
	c, err := NewAPIClient(APIClientConfig{BaseURL: srv.URL + "/api/v1/", Token: "tok"}, n, nil)
	require.NoError(t, err)
	return c, n, &hits
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAPIClientSendsTokenAndDecodesSnapshot(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/app-data", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"products": []map[string]any{{"id": "PRD-1", "name": "Rak", "category": "Kayu"}},
		})
	})

	assert.False(t, c.Meta().Ready)

	data, err := c.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, data.Products, 1)
	assert.Equal(t, model.KindFinished, data.Products[0].Kind)
	assert.NotNil(t, data.Employees)

	meta := c.Meta()
	assert.True(t, meta.Ready)
	assert.NotNil(t, meta.UpdatedAt)
}

func TestAPIClientMapsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "validation",
			status: http.StatusBadRequest,
			body:   map[string]string{"field": "amount", "error": "amount must be > 0"},
			check: func(t *testing.T, err error) {
				var ve *composer.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "amount", ve.Field)
				assert.Equal(t, "amount must be > 0", ve.Message)
				assert.False(t, IsTransport(err))
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   map[string]string{"error": "transaction TRX-1 not found"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
				assert.False(t, IsTransport(err))
			},
		},
		{
			name:   "server failure",
			status: http.StatusInternalServerError,
			body:   map[string]string{"error": "boom"},
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
				assert.Equal(t, "boom", apiErr.Message)
				assert.True(t, IsTransport(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, n, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				writeJSON(w, tt.status, tt.body)
			})
			err := c.Transactions().Remove(context.Background(), "TRX-1")
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, 0, n.count())
		})
	}
}

func TestAPIClientUnreachableIsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewAPIClient(APIClientConfig{BaseURL: url}, nil, nil)
	require.NoError(t, err)

	_, err = c.Products().List(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestAPIClientValidatesBeforeSending(t *testing.T) {
	c, n, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	_, err := c.Transactions().Create(context.Background(), composer.TransactionInput{
		Type: model.TxSale, Description: "Jual", ResponsibleEmployeeID: "EMP-0001",
	})
	var ve *composer.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "amount must be > 0", ve.Message)
	assert.Equal(t, int32(0), hits.Load())
	assert.Equal(t, 0, n.count())
}

func TestAPIClientWriteUnwrapsEnvelopeAndNotifies(t *testing.T) {
	c, n, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/products", r.URL.Path)
		var in composer.ProductInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Product created",
			"data":    map[string]any{"id": "PRD-20250101-ABCDEF", "name": in.Name, "category": in.Category, "kind": "FINISHED"},
		})
	})

	p, err := c.Products().Create(context.Background(), composer.ProductInput{Name: "Rak", Category: "Kayu"})
	require.NoError(t, err)
	assert.Equal(t, "PRD-20250101-ABCDEF", p.ID)
	assert.Equal(t, "Rak", p.Name)
	assert.Equal(t, 1, n.count())
	assert.True(t, c.Meta().Ready)
}

func TestAPIClientSettingsPatch(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]json.Number
		d := json.NewDecoder(r.Body)
		d.UseNumber()
		require.NoError(t, d.Decode(&body))
		assert.Equal(t, json.Number("250000"), body["cashOpeningBalance"])
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Settings updated",
			"data":    map[string]any{"cashOpeningBalance": 250000},
		})
	})

	s, err := c.Settings().SetCashOpeningBalance(context.Background(), dec("250000"))
	require.NoError(t, err)
	assert.Equal(t, model.SettingsID, s.ID)
	assert.True(t, s.CashOpeningBalance.Equal(dec("250000")))
}
