package domain

import "errors"

var (
	// ErrGroupVotesRequired is returned when a group-only computation is given
	// pooled vote data. Silently treating a pooled tally as a single-member
	// group would produce misleading group-comparison claims, so this is fatal.
	ErrGroupVotesRequired = errors.New("operation requires per-group vote tallies, got a pooled tally")

	// ErrMixedVoteShapes is returned when one conversation mixes pooled and
	// per-group tallies. A dataset must use one shape consistently.
	ErrMixedVoteShapes = errors.New("conversation mixes pooled and per-group vote tallies")

	ErrConversationNotFound = errors.New("conversation not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrGroupNotFound        = errors.New("opinion group not found")
)
