package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"traveltrust/infras/otel/mocks"
	"traveltrust/internal/handlers/admin"
	"traveltrust/internal/system"
	"traveltrust/internal/system/systemtest"
	"traveltrust/shared/constant"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  system.ConfigurePeerResponse `json:"data"`
	Error string                       `json:"error"`
}

func TestConfigurePeer(t *testing.T) {
	zero := common.Address{}.Hex()

	tests := []struct {
		name           string
		caller         common.Address
		body           string
		wantCode       int
		wantErr        string
		wantArbitrator common.Address
	}{
		{
			name:           "owner moves the arbitrator",
			caller:         systemtest.Owner,
			body:           `{"component":"dispute","peer":"arbitrator","address":"` + systemtest.Other.Hex() + `"}`,
			wantCode:       http.StatusOK,
			wantArbitrator: systemtest.Other,
		},
		{
			name:           "non owner is refused",
			caller:         systemtest.Traveler,
			body:           `{"component":"dispute","peer":"arbitrator","address":"` + systemtest.Other.Hex() + `"}`,
			wantCode:       http.StatusForbidden,
			wantArbitrator: systemtest.Owner,
		},
		{
			name:           "pair the component does not have",
			caller:         systemtest.Owner,
			body:           `{"component":"escrow","peer":"arbitrator","address":"` + systemtest.Other.Hex() + `"}`,
			wantCode:       http.StatusBadRequest,
			wantErr:        "Unknown component peer",
			wantArbitrator: systemtest.Owner,
		},
		{
			name:           "zero address",
			caller:         systemtest.Owner,
			body:           `{"component":"dispute","peer":"arbitrator","address":"` + zero + `"}`,
			wantCode:       http.StatusBadRequest,
			wantErr:        "Invalid address",
			wantArbitrator: systemtest.Owner,
		},
		{
			name:           "unknown component",
			caller:         systemtest.Owner,
			body:           `{"component":"staking","peer":"escrow","address":"` + systemtest.Other.Hex() + `"}`,
			wantCode:       http.StatusBadRequest,
			wantArbitrator: systemtest.Owner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := systemtest.New(t)
			h := admin.New(sys, mocks.NewOtel())

			r := chi.NewRouter()
			h.Router(r)

			req := httptest.NewRequest(http.MethodPut, "/admin/peers", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), constant.ContextKeyAddress, tt.caller))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			var res envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

			assert.Equal(t, tt.wantCode, rec.Code, res.Error)
			assert.Equal(t, tt.wantArbitrator, sys.Arbitrator())

			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, res.Error)
			}

			if tt.wantCode == http.StatusOK {
				assert.Equal(t, systemtest.Other.Hex(), res.Data.Address)
			}
		})
	}
}
