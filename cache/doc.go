// Package cache keeps recent search results in memory so repeated queries
// and follow-up questions reuse work instead of hitting the retrieval and
// embedding services again.
//
// Entries are held in a TTL-bounded LRU. Concurrent requests for the same
// query collapse into a single fill via singleflight, and a failed fill is
// never cached, so a transient upstream error cannot poison later requests.
// Conversations are bound to the entry they last searched, which is how a
// follow-up question finds its context.
package cache
