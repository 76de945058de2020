package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr error
	}{
		{
			name:  "valid query",
			query: Query{Raw: "CRISPR cancer therapy"},
		},
		{
			name:  "valid query with date range",
			query: Query{Raw: "heart failure", From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:    "empty text",
			query:   Query{Raw: ""},
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "whitespace only text",
			query:   Query{Raw: "   \t "},
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "inverted date range",
			query:   Query{Raw: "covid", From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
			wantErr: ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateQuery() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("ValidateQuery() error does not wrap ErrInvalidQuery: %v", err)
			}
		})
	}
}

func TestValidateArticle(t *testing.T) {
	tests := []struct {
		name    string
		article *ArticleRecord
		wantErr error
	}{
		{
			name:    "valid article",
			article: &ArticleRecord{PMID: "12345", Title: "A study"},
		},
		{
			name:    "nil article",
			article: nil,
			wantErr: ErrInvalidArticle,
		},
		{
			name:    "missing identifier",
			article: &ArticleRecord{Title: "A study"},
			wantErr: ErrMissingPMID,
		},
		{
			name:    "missing title",
			article: &ArticleRecord{PMID: "12345"},
			wantErr: ErrMissingTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArticle(tt.article)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateArticle() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateArticle() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
