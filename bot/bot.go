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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/medlit/medlit"
	"github.com/medlit/medlit/index"
	"github.com/medlit/medlit/pubmed"
)

const welcomeText = `👋 I search the biomedical literature for you.

/search <topic> — find and summarize recent articles
/recent — your recent searches
/help — how to use filters

After a search, just type a question and I'll answer it from the articles found.`

const helpText = `Usage:

/search aspirin stroke prevention
/search metformin from:2020 to:2023
/search statins journal:"N Engl J Med"

Filters:
  from:YYYY[-MM[-DD]]   publication date lower bound
  to:YYYY[-MM[-DD]]     publication date upper bound
  journal:<name>        restrict to one journal (quote multi-word names)

After a search, send plain text to ask a follow-up question about the
articles. /recent lists what you searched before.`

// recentLimit is how many history summaries /recent shows.
const recentLimit = 10

// Bot is the Telegram front end for the literature service.
type Bot struct {
	api    *tg.Bot
	svc    *medlit.Service
	logger *slog.Logger
}

// Option configures a Bot.
type Option func(*Bot) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// New creates a Telegram bot backed by the given service.
func New(token string, svc *medlit.Service, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	if svc == nil {
		return nil, ErrServiceRequired
	}

	b := &Bot{
		svc:    svc,
		logger: slog.Default().With("component", "bot"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	api, err := tg.New(token, tg.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	b.api = api
	return b, nil
}

// Start runs the update loop until the context is canceled.
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("bot started")
	b.api.Start(ctx)
}

// handleUpdate dispatches one Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, api *tg.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message
	text := strings.TrimSpace(message.Text)

	switch {
	case text == "/start":
		b.reply(ctx, message.Chat.ID, welcomeText)
	case text == "/help":
		b.reply(ctx, message.Chat.ID, helpText)
	case text == "/recent":
		b.handleRecent(ctx, message)
	case strings.HasPrefix(text, "/search"):
		b.handleSearch(ctx, message, strings.TrimSpace(strings.TrimPrefix(text, "/search")))
	case strings.HasPrefix(text, "/"):
		b.reply(ctx, message.Chat.ID, "Unknown command. Try /help.")
	default:
		b.handleFollowUp(ctx, message, text)
	}
}

// handleSearch runs a search and replies with the formatted literature review.
func (b *Bot) handleSearch(ctx context.Context, message *models.Message, args string) {
	chatID := message.Chat.ID
	if args == "" {
		b.reply(ctx, chatID, "Usage: /search <topic>. See /help for filters.")
		return
	}

	query := ParseQuery(args)
	b.logger.Info("search requested", "chatID", chatID, "query", query.Normalized())
	b.reply(ctx, chatID, "🔍 Searching the literature...")

	entry, fromCache, err := b.svc.Search(ctx, query)
	if err != nil {
		b.reply(ctx, chatID, searchErrorText(err))
		return
	}
	if fromCache {
		b.logger.Debug("served from cache", "query", query.Normalized())
	}

	if err := b.svc.Bind(conversationID(chatID), query); err != nil {
		b.logger.Error("error binding conversation", "chatID", chatID, "err", err)
	}

	b.reply(ctx, chatID, FormatSearchResults(entry))
}

// handleFollowUp answers a plain-text question from the last search's articles.
func (b *Bot) handleFollowUp(ctx context.Context, message *models.Message, question string) {
	chatID := message.Chat.ID

	answer, used, err := b.svc.FollowUp(ctx, conversationID(chatID), question)
	if err != nil {
		if errors.Is(err, medlit.ErrNoActiveSearch) {
			b.reply(ctx, chatID, "I don't have a search to answer from. Run /search <topic> first.")
			return
		}
		if ee, ok := index.AsEmbeddingError(err); ok && ee.Kind == index.EmbeddingInputTooLong {
			b.reply(ctx, chatID, "That question is too long for me. Could you shorten it?")
			return
		}
		b.logger.Error("error answering follow-up", "chatID", chatID, "err", err)
		b.reply(ctx, chatID, "Something went wrong answering that. Please try again.")
		return
	}

	b.reply(ctx, chatID, FormatAnswer(answer, used))
}

// handleRecent replies with the user's aggregated search history.
func (b *Bot) handleRecent(ctx context.Context, message *models.Message) {
	summaries, err := b.svc.RecentSearches(ctx, recentLimit)
	if err != nil {
		b.logger.Error("error loading search history", "err", err)
		b.reply(ctx, message.Chat.ID, "Could not load search history. Please try again.")
		return
	}
	b.reply(ctx, message.Chat.ID, FormatRecentSearches(summaries))
}

// reply sends text to a chat, chunked under Telegram's message limit.
// Send failures are logged; there is no one to report them to.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	for _, chunk := range chunkMessage(text, messageLimit) {
		_, err := b.api.SendMessage(ctx, &tg.SendMessageParams{
			ChatID:    chatID,
			Text:      chunk,
			ParseMode: "Markdown",
		})
		if err != nil {
			b.logger.Error("error sending message", "chatID", chatID, "err", err)
			return
		}
	}
}

// searchErrorText maps retrieval failures to user-facing text.
func searchErrorText(err error) string {
	if re, ok := pubmed.AsRetrievalError(err); ok {
		switch re.Kind {
		case pubmed.RetrievalQuotaExceeded:
			return "The literature service is rate-limiting us. Please wait a moment and try again."
		case pubmed.RetrievalMalformedQuery:
			return "The search service could not interpret that query. Try simplifying it."
		default:
			return "The literature service is unavailable right now. Please try again shortly."
		}
	}
	return "That search didn't work: " + err.Error()
}

// conversationID keys the service's conversation state by chat.
func conversationID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
