package domain

// Topic is a recursive label: a leaf {name} or a node {name, subtopics}.
// Names are unique among siblings at every level. That uniqueness is an
// upstream contract the engine does not re-validate at runtime; violating it
// yields silent double-counting, not an error.
type Topic struct {
	Name      string  `json:"name"`
	Subtopics []Topic `json:"subtopics,omitempty"`
}

// IsLeaf reports whether the topic has no subtopics.
func (t Topic) IsLeaf() bool { return len(t.Subtopics) == 0 }

// OtherTopicName is the catch-all bucket produced by upstream
// categorization. It always sorts last among its siblings.
const OtherTopicName = "Other"
