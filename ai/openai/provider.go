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


package openai

import (
	"github.com/medlit/medlit/ai"
)

// Provider aggregates the OpenAI-compatible embedder and summarizer behind
// the ai.AIProvider interface.
type Provider struct {
	config     *ai.Config
	embedder   *Embedder
	summarizer *Summarizer
}

// NewProvider creates a provider from the given configuration. Both the
// embedder and the summarizer are constructed eagerly so misconfiguration
// surfaces here rather than on first use.
//
// Returns ai.AIProvider interface to enforce abstraction.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	summarizer, err := newSummarizer(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		embedder:   embedder,
		summarizer: summarizer,
	}, nil
}

// Embedder returns the provider's embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Summarizer returns the provider's summarizer.
func (p *Provider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// Close releases provider resources. The underlying HTTP clients hold no
// persistent connections that need explicit teardown.
func (p *Provider) Close() error {
	return nil
}
