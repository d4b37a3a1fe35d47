package screener

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAccountOpsRequireSession(t *testing.T) {
	c := testClient("http://unused", "http://unused", "")
	ctx := context.Background()

	if _, err := c.ListWatchlists(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("ListWatchlists err = %v, want ErrNoSession", err)
	}
	if err := c.CreateWatchlist(ctx, "x", nil); !errors.Is(err, ErrNoSession) {
		t.Errorf("CreateWatchlist err = %v, want ErrNoSession", err)
	}
	if err := c.UpdateWatchlist(ctx, "x", nil); !errors.Is(err, ErrNoSession) {
		t.Errorf("UpdateWatchlist err = %v, want ErrNoSession", err)
	}
}

func TestUpdateWatchlistReplacesSymbols(t *testing.T) {
	var deleted bool
	var added []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/watchlists/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "sessionid=token123" {
			t.Errorf("missing session cookie, got %q", r.Header.Get("Cookie"))
		}
		json.NewEncoder(w).Encode([]AccountWatchlist{
			{ID: 7, Name: "TVTools - Perpetual Pairs"},
			{ID: 9, Name: "Other"},
		})
	})
	mux.HandleFunc("/api/v1/watchlists/7/symbols/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			deleted = true
		case http.MethodPost:
			if !deleted {
				t.Error("symbols added before existing set was cleared")
			}
			var body struct {
				Symbols []string `json:"symbols"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			added = body.Symbols
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, "token123")
	err := c.UpdateWatchlist(context.Background(), "TVTools - Perpetual Pairs",
		[]string{"BTCUSDT.P", "BLOFIN:ETHUSDT.P"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !deleted {
		t.Error("expected existing symbols to be cleared")
	}
	want := []string{"BLOFIN:BTCUSDT.P", "BLOFIN:ETHUSDT.P"}
	if len(added) != len(want) {
		t.Fatalf("added %v, want %v", added, want)
	}
	for i := range want {
		if added[i] != want[i] {
			t.Errorf("added[%d] = %q, want %q", i, added[i], want[i])
		}
	}
}

func TestUpdateWatchlistCreatesWhenMissing(t *testing.T) {
	var createdName string
	var added []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/watchlists/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]AccountWatchlist{})
		case http.MethodPost:
			var body struct {
				Name string `json:"name"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			createdName = body.Name
			json.NewEncoder(w).Encode(AccountWatchlist{ID: 11, Name: body.Name})
		}
	})
	mux.HandleFunc("/api/v1/watchlists/11/symbols/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Symbols []string `json:"symbols"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		added = body.Symbols
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv.URL, srv.URL, "token123")
	err := c.UpdateWatchlist(context.Background(), "Brand New", []string{"SOLUSDT.P"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdName != "Brand New" {
		t.Errorf("created name = %q", createdName)
	}
	if len(added) != 1 || added[0] != "BLOFIN:SOLUSDT.P" {
		t.Errorf("added = %v", added)
	}
}
