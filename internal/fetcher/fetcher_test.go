package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNewKey(t *testing.T) {
	tests := []struct {
		symbol  string
		country string
		want    string
	}{
		{"AAPL", "", "AAPL:US"},
		{"AAPL", "US", "AAPL:US"},
		{"SHOP", "CA", "SHOP:CA"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := NewKey(tt.symbol, tt.country).String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMissingRecord(t *testing.T) {
	fields := []string{"price", "name", "dividend_date"}
	rec := MissingRecord(fields)

	if len(rec) != len(fields) {
		t.Fatalf("len(MissingRecord()) = %d, want %d", len(rec), len(fields))
	}
	for _, f := range fields {
		if !rec[f].IsNull() {
			t.Errorf("field %q = %q, want null", f, rec[f].String())
		}
	}
}

func TestRecord_Row(t *testing.T) {
	rec := MissingRecord([]string{"price"})
	row := rec.Row([]string{"price", "absent"})

	if len(row) != 2 {
		t.Fatalf("len(Row()) = %d, want 2", len(row))
	}
	if !row[1].IsNull() {
		t.Errorf("absent field = %q, want null", row[1].String())
	}
}

func TestNewStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{404, "status error (status 404): Not Found"},
		{429, "status error (status 429): Too Many Requests"},
		{503, "status error (status 503): Service Unavailable"},
		{599, "status error (status 599): unexpected status"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			err := NewStatusError(tt.status)
			if err.Type != ErrorTypeStatus {
				t.Errorf("Type = %q, want %q", err.Type, ErrorTypeStatus)
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"status", NewStatusError(404), ErrorTypeStatus},
		{"wrapped decode", fmt.Errorf("fetch: %w", NewDecodeError(errors.New("eof"))), ErrorTypeDecode},
		{"plain", errors.New("boom"), ErrorTypeUnknown},
		{"nil", nil, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.want {
				t.Errorf("TypeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	if got := ClassifyTransportError(context.DeadlineExceeded).Type; got != ErrorTypeTimeout {
		t.Errorf("deadline Type = %q, want %q", got, ErrorTypeTimeout)
	}

	wrapped := fmt.Errorf("get: %w", context.DeadlineExceeded)
	if got := ClassifyTransportError(wrapped).Type; got != ErrorTypeTimeout {
		t.Errorf("wrapped deadline Type = %q, want %q", got, ErrorTypeTimeout)
	}

	if got := ClassifyTransportError(errors.New("connection refused")).Type; got != ErrorTypeNetwork {
		t.Errorf("generic Type = %q, want %q", got, ErrorTypeNetwork)
	}

	original := NewValidationError("bad shape")
	if got := ClassifyTransportError(fmt.Errorf("wrap: %w", original)); got != original {
		t.Errorf("ClassifyTransportError() did not preserve existing FetchError")
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewNetworkError(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() = false, want true")
	}

	want := "network error: request failed: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
