package indicator

import (
	"context"
	"fmt"

	"github.com/splatthy/TVTools/internal/domain/models"
	"github.com/splatthy/TVTools/pkg/config"
	"github.com/splatthy/TVTools/pkg/httpclient"
	"github.com/splatthy/TVTools/pkg/logger"
)

// Fetcher is the per-symbol indicator source used by the scan engine.
type Fetcher interface {
	Fetch(ctx context.Context, symbol, exchange, screener, timeframe string) (models.IndicatorData, error)
}

// Client fetches flat indicator maps for a single symbol and timeframe from
// the scanner endpoint.
type Client struct {
	http       *httpclient.Client
	log        *logger.Logger
	scannerURL string
}

// New creates an indicator client from config.
func New(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		http: httpclient.NewClient(
			httpclient.WithTimeout(cfg.TradingView.Timeout),
			httpclient.WithHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
		),
		log:        log,
		scannerURL: cfg.TradingView.ScannerURL,
	}
}

// timeframe suffixes for indicator columns; daily values use bare names.
var intervalSuffix = map[string]string{
	"1h": "|60",
	"4h": "|240",
	"1d": "",
}

var baseColumns = []string{"close", "EMA12", "EMA200", "VWAP", "change"}

type symbolScanRequest struct {
	Symbols struct {
		Tickers []string `json:"tickers"`
		Query   struct {
			Types []string `json:"types"`
		} `json:"query"`
	} `json:"symbols"`
	Columns []string `json:"columns"`
}

type symbolScanResponse struct {
	Data []struct {
		S string     `json:"s"`
		D []*float64 `json:"d"`
	} `json:"data"`
}

// Fetch returns indicator data for one symbol. A nil field in the result
// means the upstream did not report that value.
func (c *Client) Fetch(ctx context.Context, symbol, exchange, screener, timeframe string) (models.IndicatorData, error) {
	data := models.IndicatorData{Symbol: symbol, Exchange: exchange, Timeframe: timeframe}

	suffix, ok := intervalSuffix[timeframe]
	if !ok {
		return data, fmt.Errorf("unsupported timeframe %q", timeframe)
	}

	columns := make([]string, 0, len(baseColumns))
	for _, col := range baseColumns {
		columns = append(columns, col+suffix)
	}

	req := symbolScanRequest{Columns: columns}
	req.Symbols.Tickers = []string{exchange + ":" + symbol}
	req.Symbols.Query.Types = []string{}

	var resp symbolScanResponse
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: "POST",
		URL:    fmt.Sprintf("%s/%s/scan", c.scannerURL, screener),
		Body:   req,
	}, &resp)
	if err != nil {
		return data, fmt.Errorf("indicator fetch %s %s: %w", symbol, timeframe, err)
	}

	if len(resp.Data) == 0 {
		return data, fmt.Errorf("indicator fetch %s %s: empty response", symbol, timeframe)
	}

	d := resp.Data[0].D
	pick := func(i int) *float64 {
		if i < len(d) {
			return d[i]
		}
		return nil
	}
	data.Close = pick(0)
	data.EMAFast = pick(1)
	data.EMASlow = pick(2)
	data.VWAP = pick(3)
	data.ChangePercent = pick(4)

	c.log.Debug("fetched indicators",
		logger.String("symbol", symbol), logger.String("timeframe", timeframe))
	return data, nil
}
