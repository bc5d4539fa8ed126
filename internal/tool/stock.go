package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// yahooChartResponse 是 Yahoo Finance chart API 的响应子集。
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// stockPrice 查询股票最新价格；实时价不可用时回退到最近的日收盘价。
func (r *Registry) stockPrice(ctx context.Context, symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "Error fetching stock price: empty ticker symbol."
	}

	endpoint := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?range=1d&interval=1d",
		url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Sprintf("Error fetching stock price: %v", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Error fetching stock price: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("Could not retrieve price for %s. Verify the ticker symbol.", symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error fetching stock price: market data service returned status %d.", resp.StatusCode)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return fmt.Sprintf("Error fetching stock price: %v", err)
	}
	if chart.Chart.Error != nil {
		return fmt.Sprintf("Could not retrieve price for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return fmt.Sprintf("Could not retrieve price for %s. Verify the ticker symbol.", symbol)
	}

	result := chart.Chart.Result[0]
	price := result.Meta.RegularMarketPrice
	if price == 0 {
		// 回退：最近一个交易日的收盘价
		for _, quote := range result.Indicators.Quote {
			for i := len(quote.Close) - 1; i >= 0; i-- {
				if quote.Close[i] != 0 {
					price = quote.Close[i]
					break
				}
			}
		}
	}
	if price == 0 {
		price = result.Meta.ChartPreviousClose
	}
	if price == 0 {
		return fmt.Sprintf("Could not retrieve price for %s. Verify the ticker symbol.", symbol)
	}

	currency := result.Meta.Currency
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s is currently trading at %.2f %s", symbol, price, currency)
}
