// Copyright 2025 The medlit authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package bot

import (
	"fmt"
	"strings"

	"github.com/medlit/medlit/cache"
	"github.com/medlit/medlit/core"
)

// messageLimit is Telegram's maximum message length.
const messageLimit = 4096

// maxListedAuthors bounds the author list per citation; the rest collapse
// into "et al."
const maxListedAuthors = 3

// FormatSearchResults renders a search entry as a literature review in
// Telegram Markdown: numbered citations with bold titles, truncated author
// lists, per-article findings and a link to the paper.
func FormatSearchResults(entry *cache.Entry) string {
	articles := entry.Results.Articles
	if len(articles) == 0 {
		return fmt.Sprintf("No articles found for \"%s\". Try rephrasing or broadening the query.", entry.Query.Normalized())
	}

	findings := make(map[string]core.Finding, len(entry.Findings))
	for _, f := range entry.Findings {
		findings[f.PMID] = f
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 Found %d articles for \"%s\":\n\n", len(articles), entry.Query.Normalized())

	for i, a := range articles {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, a.Title)
		if line := formatAuthors(a.Authors); line != "" {
			b.WriteString("   " + line + "\n")
		}
		if a.PubDate != "" || a.Journal != "" {
			b.WriteString("   " + formatSource(a.PubDate, a.Journal) + "\n")
		}

		f, ok := findings[a.PMID]
		switch {
		case ok && !f.Unavailable:
			for _, claim := range f.Claims {
				b.WriteString("   • " + claim + "\n")
			}
		default:
			b.WriteString("   • Summary unavailable for this article.\n")
		}

		if a.URL != "" {
			fmt.Fprintf(&b, "   [Read Paper](%s)\n", a.URL)
		}
		b.WriteString("\n")
	}

	if entry.Results.Dropped > 0 {
		fmt.Fprintf(&b, "_%d records could not be parsed and were skipped._\n", entry.Results.Dropped)
	}

	b.WriteString("\nAsk me a follow-up question about these articles.")
	return b.String()
}

// FormatAnswer renders a follow-up answer with the articles it drew on.
func FormatAnswer(answer string, used []core.ArticleRecord) string {
	var b strings.Builder
	b.WriteString(answer)
	if len(used) > 0 {
		b.WriteString("\n\nBased on:\n")
		for i, a := range used {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, a.Title)
		}
	}
	return b.String()
}

// FormatRecentSearches renders the search history summaries.
func FormatRecentSearches(summaries []*core.QuerySummary) string {
	if len(summaries) == 0 {
		return "No searches yet. Try /search <topic>."
	}

	var b strings.Builder
	b.WriteString("🕐 Recent searches:\n\n")
	for _, s := range summaries {
		plural := "es"
		if s.Count == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "• %s — %d search%s, last %s\n",
			s.Query, s.Count, plural, s.LastSearched.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func formatAuthors(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	if len(authors) > maxListedAuthors {
		return strings.Join(authors[:maxListedAuthors], ", ") + ", et al."
	}
	return strings.Join(authors, ", ")
}

func formatSource(pubDate, journal string) string {
	switch {
	case pubDate != "" && journal != "":
		return fmt.Sprintf("(%s) - %s", pubDate, journal)
	case pubDate != "":
		return fmt.Sprintf("(%s)", pubDate)
	default:
		return journal
	}
}

// chunkMessage splits text into pieces under Telegram's message limit,
// preferring paragraph and line boundaries.
func chunkMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, paragraph := range strings.Split(text, "\n\n") {
		piece := paragraph + "\n\n"
		if current.Len() > 0 && current.Len()+len(piece) > limit {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}

		if len(piece) > limit {
			// Paragraph alone exceeds the limit; split on lines.
			for _, line := range strings.Split(paragraph, "\n") {
				if current.Len()+len(line)+1 > limit {
					if current.Len() > 0 {
						chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
						current.Reset()
					}
					// Hard-split a line that alone exceeds the limit.
					for len(line)+1 > limit {
						chunks = append(chunks, line[:limit-1])
						line = line[limit-1:]
					}
				}
				current.WriteString(line + "\n")
			}
			current.WriteString("\n")
			continue
		}
		current.WriteString(piece)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
	}
	return chunks
}
