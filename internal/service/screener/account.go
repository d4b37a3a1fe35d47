package screener

import (
	"context"
	"errors"
	"fmt"

	"github.com/splatthy/TVTools/pkg/httpclient"
	"github.com/splatthy/TVTools/pkg/logger"
)

// ErrNoSession is returned by account operations when no session token is
// configured.
var ErrNoSession = errors.New("no session token configured")

// AccountWatchlist is one watchlist entry from the account API.
type AccountWatchlist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *Client) accountHeaders() map[string]string {
	return map[string]string{
		"Cookie": "sessionid=" + c.sessionID,
	}
}

// ListWatchlists fetches all watchlists from the account.
func (c *Client) ListWatchlists(ctx context.Context) ([]AccountWatchlist, error) {
	if c.sessionID == "" {
		return nil, ErrNoSession
	}

	var lists []AccountWatchlist
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method:  "GET",
		URL:     c.accountURL + "/api/v1/watchlists/",
		Headers: c.accountHeaders(),
	}, &lists)
	if err != nil {
		return nil, fmt.Errorf("list watchlists: %w", err)
	}

	c.log.Info("fetched account watchlists", logger.Int("count", len(lists)))
	return lists, nil
}

// CreateWatchlist creates a new account watchlist and populates it with the
// given symbols, qualified with the exchange prefix.
func (c *Client) CreateWatchlist(ctx context.Context, name string, symbols []string) error {
	if c.sessionID == "" {
		return ErrNoSession
	}

	var created AccountWatchlist
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method:  "POST",
		URL:     c.accountURL + "/api/v1/watchlists/",
		Headers: c.accountHeaders(),
		Body:    map[string]interface{}{"name": name, "symbols": []string{}},
	}, &created)
	if err != nil {
		return fmt.Errorf("create watchlist %q: %w", name, err)
	}
	if created.ID == 0 {
		return fmt.Errorf("create watchlist %q: no id in response", name)
	}

	if len(symbols) > 0 {
		if err := c.addSymbols(ctx, created.ID, symbols); err != nil {
			return err
		}
	}

	c.log.Info("created account watchlist",
		logger.String("name", name), logger.Int("symbols", len(symbols)))
	return nil
}

// UpdateWatchlist replaces the symbols of the named watchlist, creating it
// when absent.
func (c *Client) UpdateWatchlist(ctx context.Context, name string, symbols []string) error {
	if c.sessionID == "" {
		return ErrNoSession
	}

	lists, err := c.ListWatchlists(ctx)
	if err != nil {
		return err
	}

	for _, wl := range lists {
		if wl.Name != name {
			continue
		}

		// Clear existing symbols, then add the new set.
		url := fmt.Sprintf("%s/api/v1/watchlists/%d/symbols/", c.accountURL, wl.ID)
		if err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
			Method:  "DELETE",
			URL:     url,
			Headers: c.accountHeaders(),
		}, nil); err != nil {
			c.log.Debug("clear watchlist symbols", logger.Error(err))
		}

		if len(symbols) > 0 {
			if err := c.addSymbols(ctx, wl.ID, symbols); err != nil {
				return err
			}
		}

		c.log.Info("updated account watchlist",
			logger.String("name", name), logger.Int("symbols", len(symbols)))
		return nil
	}

	return c.CreateWatchlist(ctx, name, symbols)
}

func (c *Client) addSymbols(ctx context.Context, id int64, symbols []string) error {
	qualified := make([]string, 0, len(symbols))
	for _, s := range symbols {
		qualified = append(qualified, Qualify(c.exchange, s))
	}

	url := fmt.Sprintf("%s/api/v1/watchlists/%d/symbols/", c.accountURL, id)
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method:  "POST",
		URL:     url,
		Headers: c.accountHeaders(),
		Body:    map[string]interface{}{"symbols": qualified},
	}, nil)
	if err != nil {
		return fmt.Errorf("add watchlist symbols: %w", err)
	}
	return nil
}

// Qualify prefixes a bare symbol with the exchange identifier expected by
// the charting application. Already-qualified symbols pass through.
func Qualify(exchange, symbol string) string {
	prefix := exchange + ":"
	if len(symbol) >= len(prefix) && symbol[:len(prefix)] == prefix {
		return symbol
	}
	return prefix + symbol
}
