package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-balance/internal/api/rest"
	apierrors "github.com/feral-file/ff-balance/internal/api/shared/errors"
	"github.com/feral-file/ff-balance/internal/balance"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/importer"
	"github.com/feral-file/ff-balance/internal/ledger"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/mocks"
	"github.com/feral-file/ff-balance/internal/report"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)

	code := m.Run()
	os.Exit(code)
}

type testMocks struct {
	report   *mocks.MockReportService
	importer *mocks.MockImporter
}

func setupRouter(t *testing.T) (*testMocks, *gin.Engine) {
	ctrl := gomock.NewController(t)
	tm := &testMocks{
		report:   mocks.NewMockReportService(ctrl),
		importer: mocks.NewMockImporter(ctrl),
	}

	router := gin.New()
	rest.SetupRoutes(router, rest.NewHandler(tm.report, tm.importer))
	return tm, router
}

func do(router *gin.Engine, method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHealthCheck(t *testing.T) {
	_, router := setupRouter(t)

	w := do(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGetBalances(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tm, router := setupRouter(t)

		tm.report.EXPECT().GetBalances(gomock.Any(), report.Params{
			Period: ledger.PeriodSpec{Period: ledger.PeriodAllTime},
			Filters: balance.Filters{
				AccountType:      balance.AccountTypeFilterAll,
				ShowZeroBalances: true,
				ViewFilter:       balance.ViewFilterAll,
			},
			Sort: balance.Sort{Field: balance.SortFieldAccountName, Direction: ledger.DirectionAsc},
		}).Return(&report.Response{
			Data:         []balance.ListItem{},
			ResponseTime: 12 * time.Millisecond,
			Cached:       true,
		}, nil)

		w := do(router, http.MethodGet, "/api/v1/balances", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(12), body["response_time"])
		assert.Equal(t, true, body["cached"])
		assert.Contains(t, body, "data")
		assert.Contains(t, body, "summary")
		assert.Contains(t, body, "filters")
		assert.Equal(t, "12ms", w.Header().Get("X-Response-Time"))
	})

	t.Run("custom period with calendar dates", func(t *testing.T) {
		tm, router := setupRouter(t)

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1).Add(-time.Nanosecond)
		tm.report.EXPECT().GetBalances(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p report.Params) (*report.Response, error) {
				assert.Equal(t, "company-acme", p.CompanyID)
				assert.Equal(t, ledger.PeriodCustom, p.Period.Period)
				require.NotNil(t, p.Period.Start)
				require.NotNil(t, p.Period.End)
				assert.True(t, start.Equal(*p.Period.Start))
				assert.True(t, end.Equal(*p.Period.End))
				assert.Equal(t, balance.AccountTypeFilterWallet, p.Filters.AccountType)
				assert.False(t, p.Filters.ShowZeroBalances)
				assert.Equal(t, "ops", p.Filters.Search)
				assert.Equal(t, balance.SortFieldFinalBalance, p.Sort.Field)
				assert.Equal(t, ledger.DirectionDesc, p.Sort.Direction)
				return &report.Response{}, nil
			})

		w := do(router, http.MethodGet, "/api/v1/balances?company=company-acme&account_type=wallet"+
			"&search=+ops+&show_zero_balances=false&period=custom&start_date=2024-01-01&end_date=2024-01-31"+
			"&sort_field=finalBalance&sort_direction=desc", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name  string
		query string
	}{
		{"unknown period", "period=fortnight"},
		{"custom without dates", "period=custom"},
		{"malformed date", "period=custom&start_date=01/02/2024&end_date=2024-02-01"},
		{"account type", "account_type=card"},
		{"view filter", "view_filter=equity"},
		{"sort field", "sort_field=iban"},
		{"sort direction", "sort_direction=up"},
	}
	for _, tt := range tests {
		t.Run("invalid "+tt.name, func(t *testing.T) {
			_, router := setupRouter(t)

			w := do(router, http.MethodGet, "/api/v1/balances?"+tt.query, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, apierrors.ErrCodeValidationFailed, decodeError(t, w).Code)
		})
	}

	t.Run("malformed boolean", func(t *testing.T) {
		_, router := setupRouter(t)

		w := do(router, http.MethodGet, "/api/v1/balances?show_zero_balances=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierrors.ErrCodeBadRequest, decodeError(t, w).Code)
	})

	t.Run("service failure", func(t *testing.T) {
		tm, router := setupRouter(t)
		tm.report.EXPECT().GetBalances(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

		w := do(router, http.MethodGet, "/api/v1/balances", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		apiErr := decodeError(t, w)
		assert.Equal(t, apierrors.ErrCodeInternalError, apiErr.Code)
		assert.NotContains(t, apiErr.Details, "connection reset")
	})
}

func TestImportWallet(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tm, router := setupRouter(t)

		tm.importer.EXPECT().ImportWallet(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req importer.Request) (*importer.Result, error) {
				assert.Equal(t, "wallet-eth", req.WalletID)
				require.NotNil(t, req.StartDate)
				require.NotNil(t, req.EndDate)
				assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*req.StartDate))
				assert.True(t, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC).Equal(*req.EndDate))
				assert.Equal(t, []string{"ETH"}, req.Currencies)
				assert.Equal(t, 100, req.Limit)
				assert.True(t, req.OverwriteDuplicates)
				return &importer.Result{Success: true, ImportedTransactions: 3, ImportID: "01HQ"}, nil
			})

		w := do(router, http.MethodPost, "/api/v1/wallets/wallet-eth/import", map[string]interface{}{
			"start_date":           "2024-01-01",
			"end_date":             "2024-02-01T11:00:00+01:00",
			"currencies":           []string{"ETH"},
			"limit":                100,
			"overwrite_duplicates": true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var result importer.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, 3, result.ImportedTransactions)
		assert.Equal(t, "01HQ", result.ImportID)
	})

	t.Run("empty body uses defaults", func(t *testing.T) {
		tm, router := setupRouter(t)
		tm.importer.EXPECT().ImportWallet(gomock.Any(), importer.Request{WalletID: "wallet-eth"}).
			Return(&importer.Result{Success: true}, nil)

		w := do(router, http.MethodPost, "/api/v1/wallets/wallet-eth/import", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("upstream failure is reported in the body", func(t *testing.T) {
		tm, router := setupRouter(t)
		tm.importer.EXPECT().ImportWallet(gomock.Any(), gomock.Any()).
			Return(&importer.Result{Success: false, Errors: []string{"failed to fetch ETH history"}}, nil)

		w := do(router, http.MethodPost, "/api/v1/wallets/wallet-eth/import", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	errorCases := []struct {
		name     string
		body     interface{}
		err      error
		wantCode int
		wantAPI  apierrors.ErrorCode
	}{
		{"malformed json", "{", nil, http.StatusBadRequest, apierrors.ErrCodeBadRequest},
		{"negative limit", map[string]interface{}{"limit": -1}, nil, http.StatusUnprocessableEntity, apierrors.ErrCodeValidationFailed},
		{"bad date", map[string]interface{}{"start_date": "yesterday"}, nil, http.StatusUnprocessableEntity, apierrors.ErrCodeValidationFailed},
		{"unknown wallet", nil, domain.ErrAccountNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound},
		{"not a crypto wallet", nil, domain.ErrInvalidInput, http.StatusUnprocessableEntity, apierrors.ErrCodeValidationFailed},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			tm, router := setupRouter(t)
			if tt.err != nil {
				tm.importer.EXPECT().ImportWallet(gomock.Any(), gomock.Any()).Return(nil, tt.err)
			}

			w := do(router, http.MethodPost, "/api/v1/wallets/wallet-eth/import", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantAPI, decodeError(t, w).Code)
		})
	}
}

func TestSetInitialBalance(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tm, router := setupRouter(t)
		notes := "opening"

		tm.importer.EXPECT().SetInitialBalance(gomock.Any(), importer.InitialBalanceRequest{
			AccountID:   "bank-operating",
			AccountType: domain.AccountTypeBank,
			Amount:      decimal.RequireFromString("1000.50"),
			Currency:    "EUR",
			Notes:       &notes,
			Overwrite:   true,
		}).Return(&domain.InitialBalance{
			AccountID:   "bank-operating",
			AccountType: domain.AccountTypeBank,
			Amount:      decimal.RequireFromString("1000.5"),
			Currency:    "EUR",
		}, nil)

		w := do(router, http.MethodPut, "/api/v1/initial-balances",
			`{"account_id":"bank-operating","account_type":"bank","amount":"1000.50","currency":"EUR","notes":"opening","overwrite":true}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"amount":"1000.5"`)
	})

	t.Run("numeric amount", func(t *testing.T) {
		tm, router := setupRouter(t)
		tm.importer.EXPECT().SetInitialBalance(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req importer.InitialBalanceRequest) (*domain.InitialBalance, error) {
				assert.True(t, decimal.RequireFromString("-12.25").Equal(req.Amount))
				assert.True(t, req.AllowNegative)
				return &domain.InitialBalance{}, nil
			})

		w := do(router, http.MethodPut, "/api/v1/initial-balances",
			`{"account_id":"wallet-eth","account_type":"wallet","amount":-12.25,"allow_negative":true}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantAPI  apierrors.ErrorCode
	}{
		{"NaN amount", `{"account_id":"a","account_type":"bank","amount":"NaN"}`, nil, http.StatusBadRequest, apierrors.ErrCodeBadRequest},
		{"text amount", `{"account_id":"a","account_type":"bank","amount":"ten"}`, nil, http.StatusBadRequest, apierrors.ErrCodeBadRequest},
		{"missing amount", `{"account_id":"a","account_type":"bank"}`, nil, http.StatusUnprocessableEntity, apierrors.ErrCodeValidationFailed},
		{"missing account", `{"account_type":"bank","amount":1}`, nil, http.StatusUnprocessableEntity, apierrors.ErrCodeValidationFailed},
		{"bad account type", `{"account_id":"a","account_type":"card","amount":1}`, nil, http.StatusUnprocessableEntity, apierrors.ErrCodeValidationFailed},
		{"already exists", `{"account_id":"a","account_type":"bank","amount":1}`, domain.ErrInitialBalanceExists, http.StatusConflict, apierrors.ErrCodeConflict},
		{"negative rejected", `{"account_id":"a","account_type":"bank","amount":-1}`, domain.ErrInvalidInput, http.StatusUnprocessableEntity, apierrors.ErrCodeValidationFailed},
		{"unknown account", `{"account_id":"a","account_type":"bank","amount":1}`, domain.ErrAccountNotFound, http.StatusNotFound, apierrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, router := setupRouter(t)
			if tt.err != nil {
				tm.importer.EXPECT().SetInitialBalance(gomock.Any(), gomock.Any()).Return(nil, tt.err)
			}

			w := do(router, http.MethodPut, "/api/v1/initial-balances", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantAPI, decodeError(t, w).Code)
		})
	}
}

func TestSetupRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := mocks.NewMockAPIHandler(ctrl)

	router := gin.New()
	rest.SetupRoutes(router, handler)

	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	handler.EXPECT().HealthCheck(gomock.Any()).Do(ok)
	handler.EXPECT().GetBalances(gomock.Any()).Do(ok)
	handler.EXPECT().ImportWallet(gomock.Any()).Do(ok)
	handler.EXPECT().SetInitialBalance(gomock.Any()).Do(ok)

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/api/v1/balances"},
		{http.MethodPost, "/api/v1/wallets/w1/import"},
		{http.MethodPut, "/api/v1/initial-balances"},
	} {
		w := do(router, r.method, r.path, nil)
		assert.Equal(t, http.StatusNoContent, w.Code, r.path)
	}

	w := do(router, http.MethodGet, "/api/v1/initial-balances", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
