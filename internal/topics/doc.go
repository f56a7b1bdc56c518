// Package topics decomposes a flat comment collection over its
// topic/subtopic hierarchy. Each tree node gets a fresh consensus scorer
// scoped to exactly the comments beneath it, plus per-group vote totals and
// comparative engagement/alignment labels across sibling subtopics.
package topics
