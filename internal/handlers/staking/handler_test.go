package staking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"traveltrust/infras/otel/mocks"
	"traveltrust/internal/domains/staking/model/dto"
	"traveltrust/internal/handlers/staking"
	"traveltrust/internal/system/systemtest"
	"traveltrust/shared/constant"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
}

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()

	sys := systemtest.New(t)
	h := staking.New(sys.Staking, mocks.NewOtel())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if caller := req.Header.Get("X-Test-Caller"); caller != "" {
				req = req.WithContext(context.WithValue(req.Context(), constant.ContextKeyAddress, common.HexToAddress(caller)))
			}

			next.ServeHTTP(w, req)
		})
	})
	h.Router(r)

	return r
}

func do[T any](t *testing.T, r http.Handler, method, path string, caller *common.Address, body string) (int, envelope[T]) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != nil {
		req.Header.Set("X-Test-Caller", caller.Hex())
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var res envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())

	return rec.Code, res
}

func TestStakeLifecycle(t *testing.T) {
	r := newRouter(t)
	guide := &systemtest.Guide
	infoPath := "/staking/guides/" + guide.Hex()

	code, res := do[dto.GuideStakeResponse](t, r, http.MethodPost, "/staking/register", guide, `{"value":"0.05"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Insufficient stake", res.Error)

	code, res = do[dto.GuideStakeResponse](t, r, http.MethodPost, "/staking/register", guide, `{"value":"0.1"}`)
	require.Equal(t, http.StatusCreated, code, res.Error)
	assert.True(t, res.Data.IsRegistered)
	assert.Equal(t, "0.1", res.Data.StakeAmount)
	assert.NotEmpty(t, res.Data.TxID)

	code, qualification := do[dto.QualificationResponse](t, r, http.MethodGet, infoPath+"/qualification", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, qualification.Data.IsQualified)

	code, res = do[dto.GuideStakeResponse](t, r, http.MethodPost, "/staking/register", guide, `{"value":"0.1"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Already registered", res.Error)

	code, res = do[dto.GuideStakeResponse](t, r, http.MethodPost, "/staking/unregister", guide, "")
	require.Equal(t, http.StatusOK, code, res.Error)
	assert.False(t, res.Data.IsRegistered)
	assert.NotEmpty(t, res.Data.WithdrawableAt)

	code, withdrawn := do[dto.WithdrawStakeResponse](t, r, http.MethodPost, "/staking/withdraw", guide, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Lockup period not over", withdrawn.Error)

	code, res = do[dto.GuideStakeResponse](t, r, http.MethodGet, infoPath, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, guide.Hex(), res.Data.Guide)
	assert.Equal(t, "0.1", res.Data.StakeAmount)

	code, qualification = do[dto.QualificationResponse](t, r, http.MethodGet, infoPath+"/qualification", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, qualification.Data.IsQualified)
}

func TestRequestErrors(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		caller   *common.Address
		body     string
		wantCode int
	}{
		{"register unauthenticated", http.MethodPost, "/staking/register", nil, `{"value":"1"}`, http.StatusUnauthorized},
		{"register malformed value", http.MethodPost, "/staking/register", &systemtest.Guide, `{"value":"ten"}`, http.StatusBadRequest},
		{"register unknown field", http.MethodPost, "/staking/register", &systemtest.Guide, `{"value":"1","extra":true}`, http.StatusBadRequest},
		{"register beyond balance", http.MethodPost, "/staking/register", &systemtest.Guide, `{"value":"11"}`, http.StatusPaymentRequired},
		{"unregister without stake", http.MethodPost, "/staking/unregister", &systemtest.Guide, "", http.StatusConflict},
		{"withdraw without stake", http.MethodPost, "/staking/withdraw", &systemtest.Guide, "", http.StatusConflict},
		{"info bad address", http.MethodGet, "/staking/guides/0x12", nil, "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := do[dto.GuideStakeResponse](t, r, tt.method, tt.path, tt.caller, tt.body)

			assert.Equal(t, tt.wantCode, code)
		})
	}
}
