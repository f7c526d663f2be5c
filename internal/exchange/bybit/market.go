package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/altommo/crypto-grid-trader/pkg/types"
)

// Bybit kline request limit per call.
const maxKlinesPerRequest = 1000

// GetCandles fetches candle history for a symbol between start and end,
// paginating backwards through the API until the range is covered. Results
// are returned oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]types.OHLCV, error) {
	var all []types.OHLCV
	cursor := end

	for cursor.After(start) {
		batch, err := c.getKlineBatch(ctx, symbol, interval, start, cursor)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		all = append(all, batch...)

		oldest := batch[len(batch)-1].Timestamp
		if !oldest.Before(cursor) {
			break
		}
		cursor = oldest.Add(-time.Millisecond)
	}

	sort.Slice(all, func(a, b int) bool {
		return all[a].Timestamp.Before(all[b].Timestamp)
	})
	return all, nil
}

// getKlineBatch fetches one page of klines, newest first as the API returns
// them.
func (c *Client) getKlineBatch(ctx context.Context, symbol, interval string, start, end time.Time) ([]types.OHLCV, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
		"interval": interval,
		"start":    start.UnixMilli(),
		"end":      end.UnixMilli(),
		"limit":    maxKlinesPerRequest,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, fmt.Errorf("get klines: %w", err)
	}

	return parseKlineResponse(result)
}

// GetLatestPrice gets the latest traded price for a symbol.
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return 0, fmt.Errorf("get latest price: %w", err)
	}

	return parseLatestPriceResponse(result, symbol)
}

func parseKlineResponse(response interface{}) ([]types.OHLCV, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal kline result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("unmarshal kline result: %w", err)
	}

	var candles []types.OHLCV
	for _, item := range klineResult.List {
		if len(item) < 6 {
			continue
		}

		// Bybit kline format: [startTime, open, high, low, close, volume, turnover]
		candles = append(candles, types.OHLCV{
			Timestamp: time.UnixMilli(parseInt64(item[0])),
			Open:      parseFloat64(item[1]),
			High:      parseFloat64(item[2]),
			Low:       parseFloat64(item[3]),
			Close:     parseFloat64(item[4]),
			Volume:    parseFloat64(item[5]),
		})
	}

	return candles, nil
}

func parseLatestPriceResponse(response interface{}, symbol string) (float64, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return 0, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return 0, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return 0, fmt.Errorf("marshal ticker result: %w", err)
	}

	var tickerResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &tickerResult); err != nil {
		return 0, fmt.Errorf("unmarshal ticker result: %w", err)
	}

	for _, ticker := range tickerResult.List {
		if ticker.Symbol == symbol {
			return parseFloat64(ticker.LastPrice), nil
		}
	}
	return 0, fmt.Errorf("no ticker for symbol %s", symbol)
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat64(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
