package domain

// Comment is one free-text statement from a deliberation, optionally
// annotated with vote tallies and topic labels by the upstream
// categorization pipeline. Comments are read-only to the stats engine.
type Comment struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Votes  *VoteInfo `json:"votes,omitempty"`
	Topics []Topic   `json:"topics,omitempty"`
}

// HasVotes reports whether any tally is attached.
func (c Comment) HasVotes() bool { return c.Votes != nil }
