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


package cache

import "errors"

var (
	// ErrClosed is returned by all operations after Close.
	ErrClosed = errors.New("cache is closed")

	// ErrFillRequired indicates GetOrFill was called without a fill function.
	ErrFillRequired = errors.New("fill function is required")

	// ErrConversationRequired indicates an empty conversation ID.
	ErrConversationRequired = errors.New("conversation ID is required")

	// ErrInvalidCapacity indicates a non-positive cache capacity.
	ErrInvalidCapacity = errors.New("capacity must be greater than zero")

	// ErrInvalidTTL indicates a non-positive entry lifetime.
	ErrInvalidTTL = errors.New("TTL must be greater than zero")
)
