package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/split-ledger/internal/service"
)

// newTestHandler builds a handler over an empty in-memory ledger. The
// routes exercised here either fail validation before any storage access
// or read purely from ledger state, so no database is needed.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return NewHandler(service.New(nil, "SGD")).Router()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestCreateExpenseValidation(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	t.Run("rejects malformed body", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/expenses", "{not json")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, resp.Success)
		require.Equal(t, "BAD_REQUEST", resp.Error.Code)
	})

	t.Run("rejects sub-cent amounts", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/expenses", `{
			"payer_id": 1, "total_amount": "10.001", "split_method": "equal",
			"participants": [{"user_id": 1}, {"user_id": 2}]
		}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, resp.Error.Message, "total_amount")
	})

	t.Run("rejects unknown split method", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/expenses", `{
			"payer_id": 1, "total_amount": "10.00", "split_method": "vibes",
			"participants": [{"user_id": 1}]
		}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, resp.Error.Message, "vibes")
	})

	t.Run("empty participant set is unprocessable", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/expenses", `{
			"payer_id": 1, "total_amount": "10.00", "split_method": "equal",
			"participants": []
		}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "EMPTY_PARTICIPANT_SET", resp.Error.Code)
	})

	t.Run("exact amounts that disagree with the total are unprocessable", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/expenses", `{
			"payer_id": 1, "total_amount": "100.00", "split_method": "exact_amount",
			"participants": [
				{"user_id": 1, "exact_amount": "40.00"},
				{"user_id": 2, "exact_amount": "40.00"}
			]
		}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "AMOUNT_MISMATCH", resp.Error.Code)
	})

	t.Run("duplicate participants are unprocessable", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/expenses", `{
			"payer_id": 1, "total_amount": "10.00", "split_method": "equal",
			"participants": [{"user_id": 2}, {"user_id": 2}]
		}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "DUPLICATE_PARTICIPANT", resp.Error.Code)
	})
}

func TestSettleValidation(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	t.Run("rejects malformed amount", func(t *testing.T) {
		rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/settlements", `{
			"from_user_id": 1, "to_user_id": 2, "amount": "ten dollars"
		}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("zero amount is unprocessable", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/settlements", `{
			"from_user_id": 1, "to_user_id": 2, "amount": "0.00"
		}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "NON_POSITIVE_SETTLEMENT_AMOUNT", resp.Error.Code)
	})
}

func TestReadEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	t.Run("unknown pair reads as zero", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/balances/1/2", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, resp.Success)

		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.JSONEq(t, `{"net_balance": "0.00"}`, string(data))
	})

	t.Run("rejects non-numeric user IDs", func(t *testing.T) {
		rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/balances/alice/2", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("balances for an unseen user are empty", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/users/1/balances", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, resp.Data)
	})

	t.Run("owed lists for an unseen user are empty", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/users/1/owed", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, resp.Data)

		rec, resp = doRequest(t, h, http.MethodGet, "/api/v1/users/1/owed-to-me", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, resp.Data)
	})

	t.Run("summary defaults to six months", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/users/1/summary", "")
		require.Equal(t, http.StatusOK, rec.Code)

		months, ok := resp.Data.([]any)
		require.True(t, ok)
		require.Len(t, months, 6)
	})

	t.Run("summary rejects out-of-range months", func(t *testing.T) {
		rec, _ := doRequest(t, h, http.MethodGet, "/api/v1/users/1/summary?months=0", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = doRequest(t, h, http.MethodGet, "/api/v1/users/1/summary?months=37", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no outstanding balances means no repayments", func(t *testing.T) {
		rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/repayments", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, resp.Data)
	})
}
