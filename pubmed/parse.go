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


package pubmed

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medlit/medlit/core"
)

// articleURLPrefix is the canonical landing page for a PubMed record.
const articleURLPrefix = "https://pubmed.ncbi.nlm.nih.gov/"

// The types below mirror the subset of the EFetch pubmed XML document we
// consume. Field names follow the wire schema, not Go conventions.

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string        `xml:"PMID"`
	Article articleDetail `xml:"Article"`
}

type articleDetail struct {
	ArticleTitle string     `xml:"ArticleTitle"`
	Abstract     abstract   `xml:"Abstract"`
	AuthorList   authorList `xml:"AuthorList"`
	Journal      journal    `xml:"Journal"`
}

type abstract struct {
	// AbstractText may repeat for structured abstracts (BACKGROUND,
	// METHODS, ...); we join the sections.
	Sections []string `xml:"AbstractText"`
}

type authorList struct {
	Authors []author `xml:"Author"`
}

type author struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	Initials       string `xml:"Initials"`
	CollectiveName string `xml:"CollectiveName"`
}

type journal struct {
	Title        string       `xml:"Title"`
	JournalIssue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	PubDate pubDate `xml:"PubDate"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

// parseArticles decodes an EFetch XML document into article records.
// Records failing validation are dropped and counted, never returned.
func parseArticles(data []byte, logger *slog.Logger) ([]core.ArticleRecord, int, error) {
	var set pubmedArticleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, 0, &RetrievalError{
			Kind: RetrievalTransient,
			Err:  fmt.Errorf("decoding efetch response: %w", err),
		}
	}

	articles := make([]core.ArticleRecord, 0, len(set.Articles))
	dropped := 0
	for i := range set.Articles {
		record := toRecord(&set.Articles[i])
		if err := core.ValidateArticle(&record); err != nil {
			dropped++
			logger.Warn("dropping malformed record", "pmid", record.PMID, "err", err)
			continue
		}
		articles = append(articles, record)
	}
	return articles, dropped, nil
}

// toRecord maps one wire article onto the internal record shape.
func toRecord(a *pubmedArticle) core.ArticleRecord {
	c := &a.MedlineCitation
	pmid := strings.TrimSpace(c.PMID)

	record := core.ArticleRecord{
		PMID:     pmid,
		Title:    strings.TrimSpace(c.Article.ArticleTitle),
		Abstract: strings.TrimSpace(strings.Join(c.Article.Abstract.Sections, " ")),
		Journal:  strings.TrimSpace(c.Article.Journal.Title),
		PubDate:  formatPubDate(&c.Article.Journal.JournalIssue.PubDate),
	}
	if pmid != "" {
		record.URL = articleURLPrefix + pmid + "/"
	}

	for _, au := range c.Article.AuthorList.Authors {
		name := formatAuthor(&au)
		if name != "" {
			record.Authors = append(record.Authors, name)
		}
	}
	return record
}

// formatAuthor renders an author in the PubMed citation style
// ("LastName Initials"). Collective (group) authors are used as-is.
func formatAuthor(a *author) string {
	if a.CollectiveName != "" {
		return strings.TrimSpace(a.CollectiveName)
	}
	last := strings.TrimSpace(a.LastName)
	if last == "" {
		return ""
	}
	initials := strings.TrimSpace(a.Initials)
	if initials == "" {
		initials = strings.TrimSpace(a.ForeName)
	}
	if initials == "" {
		return last
	}
	return last + " " + initials
}

// formatPubDate assembles the publication date from whichever parts the
// record carries. Medline-style ranges ("2023 Jan-Feb") pass through as-is.
func formatPubDate(d *pubDate) string {
	if d.MedlineDate != "" {
		return strings.TrimSpace(d.MedlineDate)
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{d.Year, d.Month, d.Day} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
