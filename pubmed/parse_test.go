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
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArticles(t *testing.T) {
	logger := slog.Default()

	t.Run("FullRecord", func(t *testing.T) {
		data := []byte(`<PubmedArticleSet><PubmedArticle><MedlineCitation>
<PMID>12345</PMID>
<Article>
<ArticleTitle>Effects of exercise on hypertension.</ArticleTitle>
<Abstract>
<AbstractText>BACKGROUND: Exercise lowers blood pressure.</AbstractText>
<AbstractText>CONCLUSION: Regular activity is recommended.</AbstractText>
</Abstract>
<AuthorList>
<Author><LastName>Garcia</LastName><ForeName>Maria</ForeName><Initials>M</Initials></Author>
<Author><CollectiveName>Hypertension Study Group</CollectiveName></Author>
</AuthorList>
<Journal><Title>Journal of Hypertension</Title>
<JournalIssue><PubDate><Year>2023</Year><Month>Nov</Month><Day>15</Day></PubDate></JournalIssue>
</Journal>
</Article>
</MedlineCitation></PubmedArticle></PubmedArticleSet>`)

		articles, dropped, err := parseArticles(data, logger)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, 0, dropped)

		a := articles[0]
		assert.Equal(t, "12345", a.PMID)
		assert.Equal(t, "Effects of exercise on hypertension.", a.Title)
		assert.Equal(t, "BACKGROUND: Exercise lowers blood pressure. CONCLUSION: Regular activity is recommended.", a.Abstract)
		assert.Equal(t, []string{"Garcia M", "Hypertension Study Group"}, a.Authors)
		assert.Equal(t, "Journal of Hypertension", a.Journal)
		assert.Equal(t, "2023 Nov 15", a.PubDate)
		assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/12345/", a.URL)
	})

	t.Run("MissingAbstractKept", func(t *testing.T) {
		data := []byte(`<PubmedArticleSet><PubmedArticle><MedlineCitation>
<PMID>777</PMID><Article><ArticleTitle>No abstract here</ArticleTitle></Article>
</MedlineCitation></PubmedArticle></PubmedArticleSet>`)

		articles, dropped, err := parseArticles(data, logger)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, 0, dropped)
		assert.Empty(t, articles[0].Abstract)
	})

	t.Run("MedlineDateFallback", func(t *testing.T) {
		data := []byte(`<PubmedArticleSet><PubmedArticle><MedlineCitation>
<PMID>888</PMID><Article><ArticleTitle>Range dated</ArticleTitle>
<Journal><JournalIssue><PubDate><MedlineDate>2022 Jan-Feb</MedlineDate></PubDate></JournalIssue></Journal>
</Article></MedlineCitation></PubmedArticle></PubmedArticleSet>`)

		articles, _, err := parseArticles(data, logger)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "2022 Jan-Feb", articles[0].PubDate)
	})

	t.Run("InvalidRecordsDropped", func(t *testing.T) {
		data := []byte(`<PubmedArticleSet>
<PubmedArticle><MedlineCitation><PMID>1</PMID><Article><ArticleTitle>Kept</ArticleTitle></Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><Article><ArticleTitle>No PMID</ArticleTitle></Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><PMID>3</PMID><Article></Article></MedlineCitation></PubmedArticle>
</PubmedArticleSet>`)

		articles, dropped, err := parseArticles(data, logger)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "1", articles[0].PMID)
		assert.Equal(t, 2, dropped)
	})

	t.Run("NotXML", func(t *testing.T) {
		_, _, err := parseArticles([]byte("definitely not xml"), logger)
		require.Error(t, err)
		re, ok := AsRetrievalError(err)
		require.True(t, ok)
		assert.Equal(t, RetrievalTransient, re.Kind)
	})
}

func TestFormatAuthor(t *testing.T) {
	tests := []struct {
		name string
		in   author
		want string
	}{
		{"LastNameAndInitials", author{LastName: "Smith", Initials: "JA"}, "Smith JA"},
		{"ForeNameFallback", author{LastName: "Smith", ForeName: "Jane"}, "Smith Jane"},
		{"LastNameOnly", author{LastName: "Smith"}, "Smith"},
		{"Collective", author{CollectiveName: "COVID Consortium"}, "COVID Consortium"},
		{"Empty", author{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAuthor(&tt.in))
		})
	}
}
