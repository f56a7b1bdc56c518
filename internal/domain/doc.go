// Package domain defines the core deliberation types and cross-cutting interfaces.
//
// This package contains concept-oriented files (comment.go, votes.go, topic.go,
// errors.go) with shared value types. No implementation code - just the data
// model consumed by the stats engine and the adapters. Keeping the contracts
// here prevents circular imports between the engine and the serving layer.
package domain
