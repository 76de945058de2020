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
	"strings"
	"time"

	"github.com/medlit/medlit/core"
)

// date layouts accepted in from:/to: filters, most specific first.
var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ParseQuery extracts filter tokens from a /search argument string.
//
// Supported filters, anywhere in the text:
//
//	from:2020 or from:2020-06 or from:2020-06-15
//	to:2023 (same layouts)
//	journal:Lancet or journal:"N Engl J Med"
//
// Everything else is the query text. Unparseable filter values are kept as
// plain query words rather than silently dropped.
func ParseQuery(text string) core.Query {
	var query core.Query
	var words []string

	rest := text
	for rest != "" {
		var token string
		token, rest = nextToken(rest)
		if token == "" {
			continue
		}

		lower := strings.ToLower(token)
		switch {
		case strings.HasPrefix(lower, "from:"):
			if t, ok := parseDate(token[len("from:"):]); ok {
				query.From = t
				continue
			}
		case strings.HasPrefix(lower, "to:"):
			if t, ok := parseDate(token[len("to:"):]); ok {
				// An upper bound given as a year or month means the
				// whole period.
				query.To = endOfPeriod(token[len("to:"):], t)
				continue
			}
		case strings.HasPrefix(lower, "journal:"):
			if name := strings.Trim(token[len("journal:"):], `"`); name != "" {
				query.Journal = name
				continue
			}
		}
		words = append(words, token)
	}

	query.Raw = strings.Join(words, " ")
	return query
}

// nextToken splits off the next whitespace-separated token, keeping quoted
// segments (journal:"N Engl J Med") together.
func nextToken(s string) (token, rest string) {
	s = strings.TrimLeft(s, " \t\n")
	if s == "" {
		return "", ""
	}

	if i := strings.Index(s, `"`); i >= 0 && i < strings.IndexAny(s+" ", " \t\n") {
		// Token contains an opening quote before any whitespace; extend
		// to the closing quote.
		if j := strings.Index(s[i+1:], `"`); j >= 0 {
			end := i + 1 + j + 1
			cut := strings.IndexAny(s[end:]+" ", " \t\n")
			return s[:end+cut], s[end+cut:]
		}
	}

	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// endOfPeriod widens a coarse upper bound to the end of its period:
// to:2023 means through 2023-12-31, to:2023-06 through 2023-06-30.
func endOfPeriod(value string, t time.Time) time.Time {
	switch len(value) {
	case len("2006"):
		return t.AddDate(1, 0, -1)
	case len("2006-01"):
		return t.AddDate(0, 1, -1)
	default:
		return t
	}
}
