package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "schema error",
			err:      &SchemaError{Source: "a.csv", Missing: []Target{TargetCaseNumber}},
			wantCode: "SCH001",
		},
		{
			name:     "wrapped schema error",
			err:      fmt.Errorf("clean: %w", &SchemaError{Source: "a.csv"}),
			wantCode: "SCH001",
		},
		{
			name:     "empty table",
			err:      &EmptyTableError{Source: "a.csv"},
			wantCode: "TBL001",
		},
		{
			name:     "read error",
			err:      &ReadError{Source: "a.csv", Err: errors.New("permission denied")},
			wantCode: "READ001",
		},
		{
			name:     "read error with encoding cause",
			err:      &ReadError{Source: "a.csv", Err: errors.New("encoding error: not utf-8 or latin-1")},
			wantCode: "READ002",
		},
		{
			name:     "nothing cleaned",
			err:      ErrNoCleanedTables,
			wantCode: "RUN001",
		},
		{
			name:     "context cancelled",
			err:      fmt.Errorf("clean run: %w", context.Canceled),
			wantCode: "UPL004",
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			wantCode: "UPL005",
		},
		{
			name:     "pattern is case insensitive",
			err:      errors.New("NO FILE PROVIDED"),
			wantCode: "UPL001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&EmptyTableError{Source: "x.csv"})

	expected := "The table has no data rows (Code: TBL001). Nothing to clean; the table is skipped"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrNoCleanedTables,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
