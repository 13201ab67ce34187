package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"

	"golang.org/x/time/rate"
)

const defaultMarketDataBaseURL = "https://query1.finance.yahoo.com"

var quoteSummaryModules = []string{"financialData", "defaultKeyStatistics", "summaryDetail"}

// yahooFinanceRepository fetches prices and fundamentals from the
// Yahoo Finance public API.
type yahooFinanceRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	baseURL        string
}

// NewYahooFinanceRepository creates a new instance of MarketDataRepository
// backed by Yahoo Finance.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) (MarketDataRepository, error) {
	maxPerMinute := cfg.MarketData.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}
	requestLimiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), 1)

	baseURL := cfg.MarketData.BaseURL
	if baseURL == "" {
		baseURL = defaultMarketDataBaseURL
	}

	return &yahooFinanceRepository{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		baseURL:        strings.TrimRight(baseURL, "/"),
	}, nil
}

// FetchPriceSeries retrieves the OHLCV history for one subject.
func (r *yahooFinanceRepository) FetchPriceSeries(ctx context.Context, param dto.GetPriceSeriesParam) (*dto.PriceSeries, error) {
	interval := param.Interval
	if interval == "" {
		interval = "1d"
	}
	lookback := param.Lookback
	if lookback == "" {
		lookback = r.cfg.Analyzer.PriceLookback
	}

	apiURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		r.baseURL, TickerSymbol(param.Subject), lookback, interval)

	var chartResp dto.ChartResponse
	if err := r.getJSON(ctx, apiURL, &chartResp); err != nil {
		return nil, err
	}

	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", param.Subject, chartResp.Chart.Error.Description)
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned no result for %s", param.Subject)
	}

	result := chartResp.Chart.Result[0]
	series := &dto.PriceSeries{
		Subject: param.Subject,
		Name:    result.Meta.LongName,
	}
	if series.Name == "" {
		series.Name = param.Subject.Symbol
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart API returned no quote data for %s", param.Subject)
	}
	quote := result.Indicators.Quote[0]

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		series.Bars = append(series.Bars, dto.PriceBar{
			Timestamp: time.Unix(ts, 0),
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     quote.Close[i],
			Volume:    at(quote.Volume, i),
		})
	}

	if series.Empty() {
		return nil, fmt.Errorf("chart API returned empty history for %s", param.Subject)
	}

	r.logger.Debug("Fetched price series",
		logger.StringField("subject", param.Subject.String()),
		logger.IntField("bars", len(series.Bars)),
	)
	return series, nil
}

// FetchFundamentals retrieves financial indicators and valuation data.
func (r *yahooFinanceRepository) FetchFundamentals(ctx context.Context, subject dto.SubjectKey) (*dto.FundamentalData, error) {
	apiURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		r.baseURL, TickerSymbol(subject), strings.Join(quoteSummaryModules, ","))

	var summaryResp dto.QuoteSummaryResponse
	if err := r.getJSON(ctx, apiURL, &summaryResp); err != nil {
		return nil, err
	}

	if summaryResp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary API error for %s: %s", subject, summaryResp.QuoteSummary.Error.Description)
	}
	if len(summaryResp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quoteSummary API returned no result for %s", subject)
	}

	result := summaryResp.QuoteSummary.Result[0]
	data := &dto.FundamentalData{
		FinancialIndicators: map[string]float64{},
		Valuation:           map[string]float64{},
	}

	for key, field := range map[string]string{
		"roe":              "returnOnEquity",
		"roa":              "returnOnAssets",
		"gross_margin":     "grossMargins",
		"operating_margin": "operatingMargins",
		"profit_margin":    "profitMargins",
		"revenue_growth":   "revenueGrowth",
		"earnings_growth":  "earningsGrowth",
		"current_ratio":    "currentRatio",
		"debt_to_equity":   "debtToEquity",
		"free_cash_flow":   "freeCashflow",
	} {
		if v, ok := result.FinancialData[field]; ok && v.Raw != 0 {
			data.FinancialIndicators[key] = v.Raw
		}
	}

	for key, field := range map[string]string{
		"pe_ratio":       "trailingPE",
		"forward_pe":     "forwardPE",
		"pb_ratio":       "priceToBook",
		"dividend_yield": "dividendYield",
		"market_cap":     "marketCap",
	} {
		if v, ok := result.SummaryDetail[field]; ok && v.Raw != 0 {
			data.Valuation[key] = v.Raw
			continue
		}
		if v, ok := result.DefaultKeyStatistics[field]; ok && v.Raw != 0 {
			data.Valuation[key] = v.Raw
		}
	}

	if _, ok := result.FinancialData["targetMeanPrice"]; ok {
		data.HasForecast = true
	}

	r.logger.Debug("Fetched fundamentals",
		logger.StringField("subject", subject.String()),
		logger.IntField("indicators", len(data.FinancialIndicators)),
	)
	return data, nil
}

func (r *yahooFinanceRepository) getJSON(ctx context.Context, apiURL string, out interface{}) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to fetch market data", logger.ErrorField(err), logger.StringField("url", apiURL))
		return fmt.Errorf("failed to fetch market data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from market data API",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("url", apiURL),
		)
		return fmt.Errorf("received non-OK response from market data API: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// TickerSymbol maps a subject to its Yahoo Finance ticker. Shanghai
// listings carry .SS, Shenzhen .SZ, Hong Kong the last four digits
// with .HK, and US symbols pass through unchanged.
func TickerSymbol(subject dto.SubjectKey) string {
	switch subject.Market {
	case dto.MarketAStock:
		if strings.HasPrefix(subject.Symbol, "6") {
			return subject.Symbol + ".SS"
		}
		return subject.Symbol + ".SZ"
	case dto.MarketHKStock:
		symbol := subject.Symbol
		if len(symbol) > 4 {
			symbol = symbol[len(symbol)-4:]
		}
		return symbol + ".HK"
	default:
		return subject.Symbol
	}
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
