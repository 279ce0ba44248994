// Package search implements cross-entity text search: a graph collector that
// gathers every textual representation reachable from a value, and a token
// matcher that checks a query against the collected haystack.
//
// Entities and fields opt in by implementing Searchable (declared children)
// or Texter (optional text). Values that implement neither are walked by
// reflection over exported fields. Results keep the caller's order; there is
// no ranking.
package search
