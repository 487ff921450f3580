package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-balance/internal/api/rest/dto"
	"github.com/feral-file/ff-balance/internal/importer"
	"github.com/feral-file/ff-balance/internal/report"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetBalances returns the balance report of all accounts
	// GET /api/v1/balances?company=<id>&account_type=<all|bank|wallet>&search=<text>&show_zero_balances=<bool>&view_filter=<all|assets|liabilities>&period=<period>&start_date=<date>&end_date=<date>&sort_field=<field>&sort_direction=<asc|desc>
	GetBalances(c *gin.Context)

	// ImportWallet imports the on-chain history of a crypto wallet
	// POST /api/v1/wallets/:id/import
	ImportWallet(c *gin.Context)

	// SetInitialBalance creates or overwrites the initial balance of an account
	// PUT /api/v1/initial-balances
	SetInitialBalance(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	report   report.Service
	importer importer.Service
}

// NewHandler creates a new REST API handler
func NewHandler(reportService report.Service, importService importer.Service) Handler {
	return &handler{
		report:   reportService,
		importer: importService,
	}
}

// GetBalances returns the balance report of all accounts
func (h *handler) GetBalances(c *gin.Context) {
	queryParams, err := ParseBalancesQuery(c)
	if err != nil {
		respondBadRequest(c, "Invalid query parameters", err.Error())
		return
	}

	params, err := queryParams.ToReportParams()
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	resp, err := h.report.GetBalances(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err, "Failed to compute balances")
		return
	}

	c.Header("X-Response-Time", resp.ResponseTime.String())
	c.JSON(http.StatusOK, dto.BalancesResponse{
		Response:     resp,
		ResponseTime: resp.ResponseTime.Milliseconds(),
	})
}

// ImportWallet imports the on-chain history of a crypto wallet
func (h *handler) ImportWallet(c *gin.Context) {
	walletID := strings.TrimSpace(c.Param("id"))
	if walletID == "" {
		respondBadRequest(c, "Wallet ID is required")
		return
	}

	var req dto.ImportWalletRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body", err.Error())
			return
		}
	}

	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	start, err := parseDate(req.StartDate, false)
	if err != nil {
		respondValidationError(c, fmt.Sprintf("invalid start_date: %v", err))
		return
	}
	end, err := parseDate(req.EndDate, true)
	if err != nil {
		respondValidationError(c, fmt.Sprintf("invalid end_date: %v", err))
		return
	}

	result, err := h.importer.ImportWallet(c.Request.Context(), importer.Request{
		WalletID:            walletID,
		StartDate:           start,
		EndDate:             end,
		Currencies:          req.Currencies,
		Limit:               req.Limit,
		OverwriteDuplicates: req.OverwriteDuplicates,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to import wallet")
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetInitialBalance creates or overwrites the initial balance of an account
func (h *handler) SetInitialBalance(c *gin.Context) {
	var req dto.SetInitialBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	saved, err := h.importer.SetInitialBalance(c.Request.Context(), importer.InitialBalanceRequest{
		AccountID:     req.AccountID,
		AccountType:   req.AccountType,
		Amount:        *req.Amount,
		Currency:      req.Currency,
		Notes:         req.Notes,
		Overwrite:     req.Overwrite,
		AllowNegative: req.AllowNegative,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to save initial balance")
		return
	}

	c.JSON(http.StatusOK, saved)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-balance-api",
	})
}
