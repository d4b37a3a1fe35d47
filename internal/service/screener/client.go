package screener

import (
	"context"
	"fmt"
	"strings"

	"github.com/splatthy/TVTools/internal/domain/models"
	"github.com/splatthy/TVTools/pkg/config"
	"github.com/splatthy/TVTools/pkg/httpclient"
	"github.com/splatthy/TVTools/pkg/logger"
)

const (
	perpSuffix = "USDT.P"
	userAgent  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	scanLimit  = 2000
)

// Client talks to the TradingView screener and account endpoints.
type Client struct {
	http       *httpclient.Client
	log        *logger.Logger
	scannerURL string
	searchURL  string
	accountURL string
	exchange   string
	sessionID  string
}

// New creates a screener client from config.
func New(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		http: httpclient.NewClient(
			httpclient.WithTimeout(cfg.TradingView.Timeout),
			httpclient.WithHeader("User-Agent", userAgent),
			httpclient.WithHeader("Referer", cfg.TradingView.AccountURL+"/"),
			httpclient.WithHeader("Origin", cfg.TradingView.AccountURL),
		),
		log:        log,
		scannerURL: cfg.TradingView.ScannerURL,
		searchURL:  cfg.TradingView.SearchURL,
		accountURL: cfg.TradingView.AccountURL,
		exchange:   cfg.TradingView.Exchange,
		sessionID:  cfg.TradingView.SessionID,
	}
}

type scanFilter struct {
	Left      string `json:"left"`
	Operation string `json:"operation"`
	Right     string `json:"right"`
}

type scanRequest struct {
	Filter  []scanFilter `json:"filter"`
	Options struct {
		Lang string `json:"lang"`
	} `json:"options"`
	Symbols struct {
		Query struct {
			Types []string `json:"types"`
		} `json:"query"`
		Tickers []string `json:"tickers"`
	} `json:"symbols"`
	Columns []string `json:"columns"`
	Sort    struct {
		SortBy    string `json:"sortBy"`
		SortOrder string `json:"sortOrder"`
	} `json:"sort"`
	Range [2]int `json:"range"`
}

type scanRow struct {
	S string        `json:"s"`
	D []interface{} `json:"d"`
}

type scanResponse struct {
	Data []scanRow `json:"data"`
}

// FetchScreenerData fetches perpetual-futures rows from the screener,
// sorted by volume descending. On any failure it returns the built-in
// fallback snapshot rather than an error; callers must check Origin.
func (c *Client) FetchScreenerData(ctx context.Context) models.Snapshot {
	req := scanRequest{
		Filter:  []scanFilter{{Left: "exchange", Operation: "equal", Right: c.exchange}},
		Columns: []string{"name", "close", "change", "volume", "type", "subtype", "description"},
		Range:   [2]int{0, scanLimit},
	}
	req.Options.Lang = "en"
	req.Symbols.Query.Types = []string{}
	req.Symbols.Tickers = []string{}
	req.Sort.SortBy = "volume"
	req.Sort.SortOrder = "desc"

	var resp scanResponse
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: "POST",
		URL:    c.scannerURL + "/crypto/scan",
		Body:   req,
	}, &resp)
	if err != nil {
		c.log.Warn("screener fetch failed, using fallback symbols", logger.Error(err))
		return fallbackSnapshot()
	}

	records := make([]models.ScreenerRecord, 0, len(resp.Data))
	dropped := 0
	for _, row := range resp.Data {
		rec, ok := parseRow(row.D)
		if !ok {
			dropped++
			c.log.Debug("skipping unparseable screener row", logger.String("ticker", row.S))
			continue
		}
		if rec.Symbol == "" {
			continue // not a perpetual contract
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		c.log.Warn("skipped invalid screener rows", logger.Int("count", dropped))
	}

	if len(records) == 0 {
		c.log.Warn("no perpetual symbols returned from screener, using fallback")
		return fallbackSnapshot()
	}

	c.log.Info("fetched screener data", logger.Int("symbols", len(records)))
	return models.Snapshot{Records: records, Origin: models.OriginFresh}
}

// parseRow converts one loose column array into a strict record. The
// second return is false when the row cannot yield at least symbol and
// price. A valid non-perpetual row comes back with an empty Symbol.
func parseRow(d []interface{}) (models.ScreenerRecord, bool) {
	if len(d) < 2 {
		return models.ScreenerRecord{}, false
	}

	name, ok := d[0].(string)
	if !ok || name == "" {
		return models.ScreenerRecord{}, false
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}

	price, ok := asFloat(d[1])
	if !ok {
		return models.ScreenerRecord{}, false
	}

	if !strings.HasSuffix(name, perpSuffix) {
		return models.ScreenerRecord{}, true
	}

	rec := models.ScreenerRecord{Symbol: name, Price: price}
	if len(d) > 2 {
		if change, ok := asFloat(d[2]); ok {
			rec.Change = &change
		}
	}
	if len(d) > 3 {
		if volume, ok := asFloat(d[3]); ok {
			rec.Volume = volume
		}
	}
	return rec, true
}

func asFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// SymbolInfo looks up raw symbol metadata from the symbol-search endpoint.
func (c *Client) SymbolInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	formatted := symbol
	if !strings.Contains(symbol, ":") {
		formatted = c.exchange + ":" + symbol
	}

	var info map[string]interface{}
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: "GET",
		URL:    c.searchURL + "/symbol_info",
		QueryParams: map[string][]string{
			"text":     {formatted},
			"hl":       {"1"},
			"exchange": {c.exchange},
			"lang":     {"en"},
			"domain":   {"production"},
		},
	}, &info)
	if err != nil {
		return nil, fmt.Errorf("symbol info %s: %w", symbol, err)
	}
	return info, nil
}

// fallbackSnapshot returns the hard-coded major-pairs list with all numeric
// fields zeroed. It keeps downstream shapes intact when the screener is down.
func fallbackSnapshot() models.Snapshot {
	symbols := []string{
		"BTCUSDT", "ETHUSDT", "ADAUSDT", "DOTUSDT", "LINKUSDT",
		"BNBUSDT", "LTCUSDT", "BCHUSDT", "XLMUSDT", "EOSUSDT",
		"TRXUSDT", "ETCUSDT", "XRPUSDT", "SOLUSDT", "AVAXUSDT",
		"MATICUSDT", "UNIUSDT", "AAVEUSDT", "SUSHIUSDT", "COMPUSDT",
	}

	records := make([]models.ScreenerRecord, 0, len(symbols))
	for _, s := range symbols {
		zero := 0.0
		records = append(records, models.ScreenerRecord{Symbol: s, Change: &zero})
	}
	return models.Snapshot{Records: records, Origin: models.OriginFallback}
}
