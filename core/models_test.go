package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "crispr cancer therapy",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestQuery_Normalized(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "lower-cases text",
			raw:  "CRISPR Cancer Therapy",
			want: "crispr cancer therapy",
		},
		{
			name: "collapses internal whitespace",
			raw:  "diabetes \t treatment\n2024",
			want: "diabetes treatment 2024",
		},
		{
			name: "trims surrounding whitespace",
			raw:  "  heart failure  ",
			want: "heart failure",
		},
		{
			name: "whitespace only becomes empty",
			raw:  " \t\n ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Query{Raw: tt.raw}.Normalized()
			if got != tt.want {
				t.Errorf("Query.Normalized() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArticleRecord_EmbeddingText(t *testing.T) {
	a := ArticleRecord{
		Title:    "A title",
		Abstract: "An abstract",
		Authors:  []string{"Smith, Jane", "Doe, John"},
	}

	got1 := a.EmbeddingText()
	got2 := a.EmbeddingText()

	if got1 != got2 {
		t.Errorf("EmbeddingText() not deterministic: %q vs %q", got1, got2)
	}

	want := "A title An abstract Smith, Jane Doe, John"
	if got1 != want {
		t.Errorf("EmbeddingText() = %q, want %q", got1, want)
	}
}
