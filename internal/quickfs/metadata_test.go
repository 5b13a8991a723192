package quickfs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketsnapshot/internal/fetcher"
	"marketsnapshot/internal/table"
)

func newTestFetcher(url string) *MetadataFetcher {
	return NewMetadataFetcher(fetcher.NewHTTPClient(fetcher.ClientOptions{
		BaseURL:  url,
		Timeout:  2 * time.Second,
		PoolSize: 4,
	}))
}

func TestMetadataFetcher_Fetch_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/AAPL:US/ovr/Quarter/" {
			t.Errorf("path = %q, want /AAPL:US/ovr/Quarter/", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		if got := r.Header.Get("User-Agent"); got != fetcher.DefaultUserAgent {
			t.Errorf("User-Agent = %q, want browser agent", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"datasets": {
				"metadata": {
					"qfs_symbol": "AAPL:US",
					"name": "Apple Inc.",
					"symbol": "AAPL",
					"exchange": "NASDAQ",
					"currency": "USD",
					"price": 150.0,
					"pe": 28.4,
					"dividend_date": 20240215,
					"ex_dividend_date": "20240209"
				}
			}
		}`))
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	f := newTestFetcher(server.URL)
	rec, err := f.Fetch(context.Background(), fetcher.NewKey("AAPL", ""))
	if err != nil {
		t.Fatalf("Fetch() returned unexpected error: %v", err)
	}

	price, ok := rec["price"].Float()
	if !ok || price != 150.0 {
		t.Errorf("price = %q, want 150", rec["price"].String())
	}

	tests := []struct {
		field string
		want  string
	}{
		{"qfs_symbol", "AAPL:US"},
		{"name", "Apple Inc."},
		{"pe", "28.4"},
		{"dividend_date", "2024-02-15"},
		{"ex_dividend_date", "2024-02-09"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := rec[tt.field].String(); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
			}
		})
	}

	// fields the response did not carry
	for _, field := range []string{"country", "sector", "industry", "beta", "description"} {
		if !rec[field].IsNull() {
			t.Errorf("%s = %q, want null", field, rec[field].String())
		}
	}

	if len(rec) != len(Fields) {
		t.Errorf("record has %d fields, want %d", len(rec), len(Fields))
	}
}

func TestMetadataFetcher_Fetch_HTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestFetcher(server.URL).Fetch(context.Background(), fetcher.NewKey("ZZZZ", ""))
			if err == nil {
				t.Fatal("Fetch() expected error, got nil")
			}

			var fe *fetcher.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not a *FetchError", err)
			}
			if fe.Type != fetcher.ErrorTypeStatus {
				t.Errorf("Type = %q, want %q", fe.Type, fetcher.ErrorTypeStatus)
			}
			if fe.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", fe.StatusCode, tt.status)
			}
		})
	}
}

func TestMetadataFetcher_Fetch_MissingMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"datasets": {}}`))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), fetcher.NewKey("AAPL", ""))
	if err == nil {
		t.Fatal("Fetch() expected error for missing metadata, got nil")
	}

	expectedErrMsg := "validation error: datasets.metadata not found in response for AAPL:US"
	if err.Error() != expectedErrMsg {
		t.Errorf("Fetch() error = %q, want %q", err.Error(), expectedErrMsg)
	}
}

func TestMetadataFetcher_Fetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"datasets": {"metadata": `))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), fetcher.NewKey("AAPL", ""))
	if err == nil {
		t.Fatal("Fetch() expected error for malformed body, got nil")
	}
	if got := fetcher.TypeOf(err); got != fetcher.ErrorTypeDecode {
		t.Errorf("TypeOf() = %q, want %q", got, fetcher.ErrorTypeDecode)
	}
}

func TestMetadataFetcher_Fetch_HTMLBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html>challenge</html>`))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), fetcher.NewKey("AAPL", ""))
	if err == nil {
		t.Fatal("Fetch() expected error for non-JSON body, got nil")
	}
}

func TestMetadataFetcher_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	f := NewMetadataFetcher(fetcher.NewHTTPClient(fetcher.ClientOptions{
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	}))

	start := time.Now()
	_, err := f.Fetch(context.Background(), fetcher.NewKey("SLOW", ""))
	if err == nil {
		t.Fatal("Fetch() expected timeout error, got nil")
	}
	if got := fetcher.TypeOf(err); got != fetcher.ErrorTypeTimeout {
		t.Errorf("TypeOf() = %q, want %q", got, fetcher.ErrorTypeTimeout)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Fetch() took %v, timeout not respected", elapsed)
	}
}

func TestMetadataFetcher_Fetch_CountryInPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/SHOP:CA/ovr/Quarter/" {
			t.Errorf("path = %q, want /SHOP:CA/ovr/Quarter/", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"datasets": {"metadata": {"country": "CA"}}}`))
	}))
	defer server.Close()

	rec, err := newTestFetcher(server.URL).Fetch(context.Background(), fetcher.NewKey("SHOP", "CA"))
	if err != nil {
		t.Fatalf("Fetch() returned unexpected error: %v", err)
	}
	if got := rec["country"].String(); got != "CA" {
		t.Errorf("country = %q, want CA", got)
	}
}

func TestFormatCompactDate(t *testing.T) {
	tests := []struct {
		name string
		in   table.Cell
		want string
		null bool
	}{
		{"number", table.Number(20240215), "2024-02-15", false},
		{"string", table.String("20231101"), "2023-11-01", false},
		{"already formatted", table.String("2023-11-01"), "2023-11-01", false},
		{"garbage", table.String("soon"), "", true},
		{"invalid month", table.String("20241301"), "", true},
		{"fractional", table.Number(20240215.5), "", true},
		{"null", table.Null(), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCompactDate(tt.in)
			if got.IsNull() != tt.null {
				t.Fatalf("IsNull() = %v, want %v", got.IsNull(), tt.null)
			}
			if got.String() != tt.want {
				t.Errorf("FormatCompactDate() = %q, want %q", got.String(), tt.want)
			}

			// formatting is stable
			if again := FormatCompactDate(got); again.String() != got.String() {
				t.Errorf("second pass = %q, want %q", again.String(), got.String())
			}
		})
	}
}
