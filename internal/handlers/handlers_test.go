package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"traveltrust/internal/handlers"
	"traveltrust/shared/constant"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCaller(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	_, err := handlers.Caller(r)
	require.ErrorIs(t, err, handlers.ErrUnauthenticated)

	addr := common.HexToAddress("0xa1")
	r = r.WithContext(context.WithValue(r.Context(), constant.ContextKeyAddress, addr))

	got, err := handlers.Caller(r)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestAddressParam(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid", value: "0x00000000000000000000000000000000000000a1"},
		{name: "short", value: "0xa1", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"address": tt.value})

			got, err := handlers.AddressParam(r)
			if tt.wantErr {
				require.ErrorIs(t, err, handlers.ErrInvalidAddress)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, common.HexToAddress(tt.value), got)
		})
	}
}

func TestIDParam(t *testing.T) {
	r := withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "42"})

	id, err := handlers.IDParam(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"-1", "x", ""} {
		r = withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": bad})

		_, err = handlers.IDParam(r)
		require.ErrorIs(t, err, handlers.ErrInvalidID)
	}
}
