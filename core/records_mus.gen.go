// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	sliceblHnuN7KgeKetinBlvΔwHQΞΞ = ord.NewSliceSer[string](ord.String)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var ArticleRecordMUS = articleRecordMUS{}

type articleRecordMUS struct{}

func (s articleRecordMUS) Marshal(v ArticleRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.PMID, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += sliceblHnuN7KgeKetinBlvΔwHQΞΞ.Marshal(v.Authors, bs[n:])
	n += ord.String.Marshal(v.Journal, bs[n:])
	n += ord.String.Marshal(v.PubDate, bs[n:])
	n += ord.String.Marshal(v.Abstract, bs[n:])
	return n + ord.String.Marshal(v.URL, bs[n:])
}

func (s articleRecordMUS) Unmarshal(bs []byte) (v ArticleRecord, n int, err error) {
	v.PMID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Authors, n1, err = sliceblHnuN7KgeKetinBlvΔwHQΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Journal, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PubDate, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Abstract, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s articleRecordMUS) Size(v ArticleRecord) (size int) {
	size = ord.String.Size(v.PMID)
	size += ord.String.Size(v.Title)
	size += sliceblHnuN7KgeKetinBlvΔwHQΞΞ.Size(v.Authors)
	size += ord.String.Size(v.Journal)
	size += ord.String.Size(v.PubDate)
	size += ord.String.Size(v.Abstract)
	return size + ord.String.Size(v.URL)
}

func (s articleRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceblHnuN7KgeKetinBlvΔwHQΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var ArchivedArticleMUS = archivedArticleMUS{}

type archivedArticleMUS struct{}

func (s archivedArticleMUS) Marshal(v ArchivedArticle, bs []byte) (n int) {
	n = ArticleRecordMUS.Marshal(v.Article, bs)
	n += ord.String.Marshal(v.Query, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.CrawledAt, bs[n:])
}

func (s archivedArticleMUS) Unmarshal(bs []byte) (v ArchivedArticle, n int, err error) {
	v.Article, n, err = ArticleRecordMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Query, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CrawledAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s archivedArticleMUS) Size(v ArchivedArticle) (size int) {
	size = ArticleRecordMUS.Size(v.Article)
	size += ord.String.Size(v.Query)
	return size + raw.TimeUnixMicro.Size(v.CrawledAt)
}

func (s archivedArticleMUS) Skip(bs []byte) (n int, err error) {
	n, err = ArticleRecordMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var SearchEventMUS = searchEventMUS{}

type searchEventMUS struct{}

func (s searchEventMUS) Marshal(v SearchEvent, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Query, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.Timestamp, bs[n:])
}

func (s searchEventMUS) Unmarshal(bs []byte) (v SearchEvent, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Query, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s searchEventMUS) Size(v SearchEvent) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Query)
	return size + raw.TimeUnixMicro.Size(v.Timestamp)
}

func (s searchEventMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
