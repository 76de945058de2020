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


package storage

import (
	"github.com/medlit/medlit/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalArchivedArticle serializes an ArchivedArticle to bytes.
func MarshalArchivedArticle(article *core.ArchivedArticle) []byte {
	buf := make([]byte, core.ArchivedArticleMUS.Size(*article))
	core.ArchivedArticleMUS.Marshal(*article, buf)
	return buf
}

// UnmarshalArchivedArticle deserializes an ArchivedArticle from bytes.
func UnmarshalArchivedArticle(data []byte) (*core.ArchivedArticle, error) {
	article, _, err := core.ArchivedArticleMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// MarshalSearchEvent serializes a SearchEvent to bytes.
func MarshalSearchEvent(event *core.SearchEvent) []byte {
	buf := make([]byte, core.SearchEventMUS.Size(*event))
	core.SearchEventMUS.Marshal(*event, buf)
	return buf
}

// UnmarshalSearchEvent deserializes a SearchEvent from bytes.
func UnmarshalSearchEvent(data []byte) (*core.SearchEvent, error) {
	event, _, err := core.SearchEventMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
