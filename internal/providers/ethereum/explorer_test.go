package ethereum_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/mocks"
	"github.com/feral-file/ff-balance/internal/providers/ethereum"
)

const (
	wallet  = "0x457ee5f723c7606c12a7264b52e285906f91eea6"
	other   = "0x99fc8ad516fbcc9ba3123d56e63a35d05aa9efb8"
	usdt    = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	apiURL  = "https://api.etherscan.io/v2/api"
	chainID = int64(1)
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// respond fills the explorer envelope for the request whose action matches
func respond(t *testing.T, responses map[string]ethereum.ExplorerResponse) func(ctx context.Context, url string, result interface{}) error {
	return func(ctx context.Context, url string, result interface{}) error {
		assert.Contains(t, url, apiURL+"?")
		assert.Contains(t, url, "chainid=1")
		assert.Contains(t, url, "apikey=test-key")
		for action, resp := range responses {
			if strings.Contains(url, "action="+action+"&") {
				*result.(*ethereum.ExplorerResponse) = resp
				return nil
			}
		}
		t.Fatalf("unexpected url %s", url)
		return nil
	}
}

func ok(rows string) ethereum.ExplorerResponse {
	return ethereum.ExplorerResponse{Status: "1", Message: "OK", Result: json.RawMessage(rows)}
}

func TestExplorerClient_GetTransactionHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := ethereum.NewExplorerClient(mockHTTPClient, nil, adapter.NewJSON(), apiURL, "test-key", chainID)

	responses := map[string]ethereum.ExplorerResponse{
		"txlist": ok(`[
			{"blockNumber":"100","timeStamp":"1704067200","hash":"0xAAA","from":"` + wallet + `","to":"` + other + `","value":"1500000000000000000","gasPrice":"20000000000","gasUsed":"21000","isError":"0","txreceipt_status":"1","input":"0x"},
			{"blockNumber":"101","timeStamp":"1704067300","hash":"0xBBB","from":"` + wallet + `","to":"` + usdt + `","value":"0","gasPrice":"10000000000","gasUsed":"50000","isError":"1","txreceipt_status":"0","input":"0xa9059cbb"}
		]`),
		"txlistinternal": ok(`[
			{"blockNumber":"102","timeStamp":"1704067400","hash":"0xCCC","from":"` + other + `","to":"` + wallet + `","value":"250000000000000000","gasUsed":"0","isError":"0","input":""}
		]`),
		"tokentx": ok(`[
			{"blockNumber":"103","timeStamp":"1704067500","hash":"0xDDD","from":"` + wallet + `","to":"` + other + `","value":"25000000","contractAddress":"` + usdt + `","tokenSymbol":"USDT","tokenDecimal":"6","gasPrice":"10000000000","gasUsed":"50000","logIndex":"7"}
		]`),
	}
	mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(respond(t, responses)).Times(3)

	txs, err := client.GetTransactionHistory(context.Background(), wallet, domain.HistoryOptions{})
	require.NoError(t, err)
	require.Len(t, txs, 4)

	native := txs[0]
	assert.Equal(t, "0xaaa", native.Hash)
	assert.Equal(t, "ETH", native.Currency)
	assert.Equal(t, domain.TokenTypeNative, native.TokenType)
	assert.Equal(t, domain.RawTxStatusSuccess, native.Status)
	assert.False(t, native.IsContractCall)
	assert.True(t, decimal.RequireFromString("1.5").Equal(native.Amount))
	assert.True(t, decimal.RequireFromString("0.00042").Equal(native.GasFee), native.GasFee.String())
	assert.Equal(t, uint64(21000), native.GasUsed)
	assert.Equal(t, time.Unix(1704067200, 0).UTC(), native.Timestamp)

	failed := txs[1]
	assert.Equal(t, "failed", failed.Status)
	assert.True(t, failed.IsContractCall)

	internal := txs[2]
	assert.True(t, internal.IsInternal)
	assert.True(t, internal.GasFee.IsZero())
	assert.True(t, decimal.RequireFromString("0.25").Equal(internal.Amount))

	token := txs[3]
	assert.Equal(t, "USDT", token.Currency)
	assert.Equal(t, domain.TokenTypeERC20, token.TokenType)
	assert.Equal(t, usdt, token.ContractAddr)
	assert.Equal(t, 7, token.LogIndex)
	assert.True(t, decimal.RequireFromString("25").Equal(token.Amount))
}

func TestExplorerClient_GetTransactionHistory_Scopes(t *testing.T) {
	tests := []struct {
		name          string
		currency      string
		expectedCalls int
		expectedCount int
	}{
		{name: "native scope keeps token transfers", currency: "eth", expectedCalls: 3, expectedCount: 2},
		{name: "token scope skips native", currency: "USDT", expectedCalls: 1, expectedCount: 1},
		{name: "other token is filtered out", currency: "USDC", expectedCalls: 1, expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
			client := ethereum.NewExplorerClient(mockHTTPClient, nil, adapter.NewJSON(), apiURL, "test-key", chainID)

			responses := map[string]ethereum.ExplorerResponse{
				"txlist": ok(`[{"blockNumber":"1","timeStamp":"1704067200","hash":"0x1","from":"` + wallet + `","to":"` + other + `","value":"1","gasPrice":"1","gasUsed":"1","isError":"0","input":"0x"}]`),
				"txlistinternal": {Status: "0", Message: "No transactions found", Result: json.RawMessage(`[]`)},
				"tokentx":        ok(`[{"blockNumber":"2","timeStamp":"1704067200","hash":"0x2","from":"` + other + `","to":"` + wallet + `","value":"1","tokenSymbol":"USDT","tokenDecimal":"6"}]`),
			}
			mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(respond(t, responses)).Times(tt.expectedCalls)

			txs, err := client.GetTransactionHistory(context.Background(), wallet, domain.HistoryOptions{Currency: tt.currency})
			require.NoError(t, err)
			assert.Len(t, txs, tt.expectedCount)
		})
	}
}

func TestExplorerClient_GetTransactionHistory_DateWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := ethereum.NewExplorerClient(mockHTTPClient, nil, adapter.NewJSON(), apiURL, "test-key", chainID)

	responses := map[string]ethereum.ExplorerResponse{
		"txlist": ok(`[
			{"timeStamp":"1704067199","hash":"0x1","from":"` + wallet + `","to":"` + other + `","value":"1","isError":"0"},
			{"timeStamp":"1704067200","hash":"0x2","from":"` + wallet + `","to":"` + other + `","value":"1","isError":"0"},
			{"timeStamp":"1704153600","hash":"0x3","from":"` + wallet + `","to":"` + other + `","value":"1","isError":"0"}
		]`),
		"txlistinternal":   ok(`[]`),
		"tokentx":          ok(`[]`),
		"getblocknobytime": {Status: "0", Message: "NOTOK", Result: json.RawMessage(`"Error! No closest block found"`)},
	}
	mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(respond(t, responses)).Times(5)

	start := time.Unix(1704067200, 0).UTC()
	end := time.Unix(1704153599, 0).UTC()
	txs, err := client.GetTransactionHistory(context.Background(), wallet, domain.HistoryOptions{
		Currency:  "ETH",
		StartDate: &start,
		EndDate:   &end,
		Limit:     50,
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "0x2", txs[0].Hash)
}

// fakeExplorer serves txlist rows one per block, honoring the block range,
// sort and offset parameters, and resolves timestamps to the rows' blocks
type fakeExplorer struct {
	t     *testing.T
	rows  []ethereum.ExplorerTransaction
	pages int
}

func newFakeExplorer(t *testing.T, days int) *fakeExplorer {
	f := &fakeExplorer{t: t}
	for i := 0; i < days; i++ {
		f.rows = append(f.rows, ethereum.ExplorerTransaction{
			BlockNumber: strconv.Itoa(100 + i),
			TimeStamp:   strconv.FormatInt(day(i).Unix(), 10),
			Hash:        fmt.Sprintf("0x%d", i),
			From:        wallet,
			To:          other,
			Value:       "1000000000000000000",
			IsError:     "0",
			Input:       "0x",
		})
	}
	return f
}

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func (f *fakeExplorer) get(ctx context.Context, rawURL string, result interface{}) error {
	u, err := url.Parse(rawURL)
	require.NoError(f.t, err)
	q := u.Query()
	resp := result.(*ethereum.ExplorerResponse)

	switch q.Get("action") {
	case "getblocknobytime":
		ts, err := strconv.ParseInt(q.Get("timestamp"), 10, 64)
		require.NoError(f.t, err)
		block := -1
		for _, row := range f.rows {
			rowTS, _ := strconv.ParseInt(row.TimeStamp, 10, 64)
			rowBlock, _ := strconv.Atoi(row.BlockNumber)
			if q.Get("closest") == "after" && rowTS >= ts {
				block = rowBlock
				break
			}
			if q.Get("closest") == "before" && rowTS <= ts {
				block = rowBlock
			}
		}
		if block < 0 {
			*resp = ethereum.ExplorerResponse{Status: "0", Message: "NOTOK", Result: json.RawMessage(`"Error! No closest block found"`)}
			return nil
		}
		*resp = ok(strconv.Quote(strconv.Itoa(block)))
		return nil

	case "txlist":
		f.pages++
		start, _ := strconv.ParseUint(q.Get("startblock"), 10, 64)
		end, _ := strconv.ParseUint(q.Get("endblock"), 10, 64)
		offset, _ := strconv.Atoi(q.Get("offset"))

		var matched []ethereum.ExplorerTransaction
		for _, row := range f.rows {
			block, _ := strconv.ParseUint(row.BlockNumber, 10, 64)
			if block >= start && block <= end {
				matched = append(matched, row)
			}
		}
		if q.Get("sort") == "desc" {
			slices.Reverse(matched)
		}
		if len(matched) > offset {
			matched = matched[:offset]
		}
		if len(matched) == 0 {
			*resp = ethereum.ExplorerResponse{Status: "0", Message: "No transactions found", Result: json.RawMessage(`[]`)}
			return nil
		}
		data, err := json.Marshal(matched)
		require.NoError(f.t, err)
		*resp = ok(string(data))
		return nil

	default:
		*resp = ethereum.ExplorerResponse{Status: "0", Message: "No transactions found", Result: json.RawMessage(`[]`)}
		return nil
	}
}

func txHashes(txs []domain.RawChainTransaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Hash)
	}
	return out
}

func TestExplorerClient_GetTransactionHistory_RecentWindowOnLongHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fake := newFakeExplorer(t, 5)
	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(fake.get).AnyTimes()
	client := ethereum.NewExplorerClient(mockHTTPClient, nil, adapter.NewJSON(), apiURL, "test-key", chainID)

	start := day(3)
	txs, err := client.GetTransactionHistory(context.Background(), wallet, domain.HistoryOptions{
		Currency:  "ETH",
		StartDate: &start,
		Limit:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0x3", "0x4"}, txHashes(txs))
}

func TestExplorerClient_GetTransactionHistory_Pagination(t *testing.T) {
	tests := []struct {
		name     string
		start    *time.Time
		end      *time.Time
		limit    int
		expected []string
		pages    int
	}{
		{
			name:     "pages through the whole history",
			expected: []string{"0x0", "0x1", "0x2", "0x3", "0x4"},
			pages:    5,
		},
		{
			name:     "stops at the limit",
			limit:    3,
			expected: []string{"0x0", "0x1", "0x2"},
			pages:    2,
		},
		{
			name:     "pages inside the window",
			start:    ptr(day(1)),
			end:      ptr(day(3)),
			expected: []string{"0x1", "0x2", "0x3"},
			pages:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			fake := newFakeExplorer(t, 5)
			mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
			mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(fake.get).AnyTimes()
			client := ethereum.NewExplorerClient(mockHTTPClient, nil, adapter.NewJSON(), apiURL, "test-key", chainID,
				ethereum.WithPageSize(2))

			txs, err := client.GetTransactionHistory(context.Background(), wallet, domain.HistoryOptions{
				Currency:  "ETH",
				StartDate: tt.start,
				EndDate:   tt.end,
				Limit:     tt.limit,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, txHashes(txs))
			assert.Equal(t, tt.pages, fake.pages)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestExplorerClient_GetTransactionHistory_Errors(t *testing.T) {
	t.Run("invalid address", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := ethereum.NewExplorerClient(mocks.NewMockHTTPClient(ctrl), nil, adapter.NewJSON(), apiURL, "test-key", chainID)
		_, err := client.GetTransactionHistory(context.Background(), "0x123", domain.HistoryOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("api rejection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
		client := ethereum.NewExplorerClient(mockHTTPClient, nil, adapter.NewJSON(), apiURL, "test-key", chainID)
		mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(respond(t, map[string]ethereum.ExplorerResponse{
			"txlist": {Status: "0", Message: "NOTOK", Result: json.RawMessage(`"Invalid API Key"`)},
		}))

		_, err := client.GetTransactionHistory(context.Background(), wallet, domain.HistoryOptions{Currency: "ETH"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid API Key")
	})

	t.Run("transport failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
		client := ethereum.NewExplorerClient(mockHTTPClient, nil, adapter.NewJSON(), apiURL, "test-key", chainID)
		mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

		_, err := client.GetTransactionHistory(context.Background(), wallet, domain.HistoryOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to call explorer API")
	})
}

func TestExplorerClient_GetNativeBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := ethereum.NewExplorerClient(mockHTTPClient, nil, adapter.NewJSON(), apiURL, "test-key", chainID)

	gomock.InOrder(
		mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(respond(t, map[string]ethereum.ExplorerResponse{
			"balance": ok(`"1234500000000000000"`),
		})),
		mockHTTPClient.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(respond(t, map[string]ethereum.ExplorerResponse{
			"balance": {Status: "0", Message: "NOTOK", Result: json.RawMessage(`"Max rate limit reached"`)},
		})),
	)

	bal, err := client.GetNativeBalance(context.Background(), wallet)
	require.NoError(t, err)
	assert.True(t, bal.IsLive)
	assert.Equal(t, ethereum.PROVIDER_NAME, bal.Source)
	assert.True(t, decimal.RequireFromString("1.2345").Equal(bal.Balance))

	bal, err = client.GetNativeBalance(context.Background(), wallet)
	require.NoError(t, err)
	assert.False(t, bal.IsLive)
	assert.Contains(t, bal.Error, "Max rate limit reached")
}

func TestRPCBalanceReader_GetNativeBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDialer := mocks.NewMockEthClientDialer(ctrl)
	mockClient := mocks.NewMockEthClient(ctrl)

	wei, _ := new(big.Int).SetString("2000000000000000000", 10)
	gomock.InOrder(
		mockDialer.EXPECT().Dial(gomock.Any(), "https://rpc.example").Return(mockClient, nil),
		mockClient.EXPECT().BalanceAt(gomock.Any(), common.HexToAddress(wallet), gomock.Nil()).Return(wei, nil),
		mockClient.EXPECT().Close(),
	)

	reader := ethereum.NewRPCBalanceReader(mockDialer, "https://rpc.example")
	bal, err := reader.GetNativeBalance(context.Background(), wallet)
	require.NoError(t, err)
	assert.True(t, bal.IsLive)
	assert.Equal(t, ethereum.RPC_SOURCE_NAME, bal.Source)
	assert.True(t, decimal.NewFromInt(2).Equal(bal.Balance))
}

func TestRPCBalanceReader_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDialer := mocks.NewMockEthClientDialer(ctrl)
	mockDialer.EXPECT().Dial(gomock.Any(), "https://rpc.example").Return(nil, errors.New("dial tcp: refused"))

	reader := ethereum.NewRPCBalanceReader(mockDialer, "https://rpc.example")
	_, err := reader.GetNativeBalance(context.Background(), wallet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to dial ethereum rpc")

	_, err = ethereum.NewRPCBalanceReader(mockDialer, "").GetNativeBalance(context.Background(), wallet)
	require.Error(t, err)
}
