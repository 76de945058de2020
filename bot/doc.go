// Package bot is the Telegram front end.
//
// It translates chat traffic into service calls: /search runs a literature
// search and replies with a formatted review, plain text after a search is a
// follow-up question answered from that search's articles, and /recent shows
// the aggregated history. Replies are rendered in Telegram Markdown and
// chunked under the 4096-character message limit.
package bot
