package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-balance/internal/balance"
	"github.com/feral-file/ff-balance/internal/ledger"
	"github.com/feral-file/ff-balance/internal/report"
)

const dateLayout = "2006-01-02"

// BalancesQueryParams holds query parameters for GET /balances
type BalancesQueryParams struct {
	// Filters
	Company          string `form:"company"`
	AccountType      string `form:"account_type,default=all"`
	Search           string `form:"search"`
	ShowZeroBalances bool   `form:"show_zero_balances,default=true"`
	ViewFilter       string `form:"view_filter,default=all"`

	// Period
	Period    string `form:"period,default=allTime"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`

	// Sorting
	SortField     string `form:"sort_field,default=accountName"`
	SortDirection string `form:"sort_direction,default=asc"`
}

// ParseBalancesQuery parses query parameters for GET /balances
func ParseBalancesQuery(c *gin.Context) (*BalancesQueryParams, error) {
	var params BalancesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	params.Company = strings.TrimSpace(params.Company)
	params.Search = strings.TrimSpace(params.Search)

	return &params, nil
}

// ToReportParams validates the query and converts it to report parameters
func (p *BalancesQueryParams) ToReportParams() (report.Params, error) {
	accountType := balance.AccountTypeFilter(p.AccountType)
	switch accountType {
	case balance.AccountTypeFilterAll, balance.AccountTypeFilterBank, balance.AccountTypeFilterWallet:
	default:
		return report.Params{}, fmt.Errorf("invalid account_type %q", p.AccountType)
	}

	view := balance.ViewFilter(p.ViewFilter)
	switch view {
	case balance.ViewFilterAll, balance.ViewFilterAssets, balance.ViewFilterLiabilities:
	default:
		return report.Params{}, fmt.Errorf("invalid view_filter %q", p.ViewFilter)
	}

	field := balance.SortField(p.SortField)
	switch field {
	case balance.SortFieldAccountName, balance.SortFieldCompanyName, balance.SortFieldCurrency, balance.SortFieldFinalBalance:
	default:
		return report.Params{}, fmt.Errorf("invalid sort_field %q", p.SortField)
	}

	direction := ledger.Direction(p.SortDirection)
	if direction != ledger.DirectionAsc && direction != ledger.DirectionDesc {
		return report.Params{}, fmt.Errorf("invalid sort_direction %q", p.SortDirection)
	}

	period := ledger.Period(p.Period)
	if !period.Valid() {
		return report.Params{}, fmt.Errorf("invalid period %q", p.Period)
	}
	spec := ledger.PeriodSpec{Period: period}
	if period == ledger.PeriodCustom {
		start, err := parseDate(p.StartDate, false)
		if err != nil {
			return report.Params{}, fmt.Errorf("invalid start_date: %w", err)
		}
		end, err := parseDate(p.EndDate, true)
		if err != nil {
			return report.Params{}, fmt.Errorf("invalid end_date: %w", err)
		}
		if start == nil || end == nil {
			return report.Params{}, fmt.Errorf("custom period requires start_date and end_date")
		}
		spec.Start, spec.End = start, end
	}

	return report.Params{
		CompanyID: p.Company,
		Period:    spec,
		Filters: balance.Filters{
			Search:           p.Search,
			AccountType:      accountType,
			ShowZeroBalances: p.ShowZeroBalances,
			ViewFilter:       view,
		},
		Sort: balance.Sort{Field: field, Direction: direction},
	}, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Calendar dates are
// taken in UTC; endOfDay moves them to the last instant of the day so the bound
// stays inclusive.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		if endOfDay {
			t = ledger.EndOfDay(t)
		}
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", s)
	}
	t = t.UTC()
	return &t, nil
}
