package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/deliberation-tools/groundwork/internal/domain"
	"github.com/deliberation-tools/groundwork/internal/metrics"
	"github.com/deliberation-tools/groundwork/internal/stats"
	"github.com/deliberation-tools/groundwork/internal/topics"
)

// AnalyzeRequest describes one analysis run. Strategy may be left empty to
// let the vote shape decide; Config overrides the service-wide engine
// thresholds for this run only.
type AnalyzeRequest struct {
	ConversationID string
	Comments       []domain.Comment
	Strategy       Strategy
	Config         *stats.Config
}

// Service runs analyses. It is stateless between calls: every run derives
// everything from its request.
type Service struct {
	clock     clockwork.Clock
	engineCfg stats.Config
}

// NewService builds the analysis service with the given default engine
// thresholds.
func NewService(clock clockwork.Clock, engineCfg stats.Config) *Service {
	return &Service{clock: clock, engineCfg: engineCfg}
}

// Analyze runs the full engine over one conversation: shape validation,
// strategy resolution, root scoring, topic aggregation, group totals, and
// relative context. The context carries the caller's deadline; the engine
// itself has no internal suspension points.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Report, error) {
	start := s.clock.Now()

	report, err := s.analyze(req)

	strategy := string(req.Strategy)
	if report != nil {
		strategy = string(report.Strategy)
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AnalysesTotal.WithLabelValues(strategy, status).Inc()

	if err != nil {
		return nil, err
	}

	duration := s.clock.Since(start)
	metrics.AnalysisDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	metrics.AnalysisComments.Observe(float64(report.CommentCount))
	metrics.AnalysisFilteredComments.Observe(float64(report.FilteredCount))
	metrics.SelectionSize.WithLabelValues("common_ground").Observe(float64(len(report.CommonGround.Comments)))
	metrics.SelectionSize.WithLabelValues("differences").Observe(float64(len(report.Differences.Comments)))
	metrics.SelectionSize.WithLabelValues("uncertain").Observe(float64(len(report.Uncertain.Comments)))

	slog.Info("Analysis completed",
		"run_id", report.RunID,
		"conversation_id", report.ConversationID,
		"strategy", report.Strategy,
		"comments", report.CommentCount,
		"filtered", report.FilteredCount,
		"topics", len(report.Topics),
		"duration", duration,
	)
	return report, nil
}

func (s *Service) analyze(req AnalyzeRequest) (*Report, error) {
	if len(req.Comments) == 0 {
		return nil, fmt.Errorf("analysis needs at least one comment")
	}

	shape, err := datasetShape(req.Comments)
	if err != nil {
		return nil, err
	}

	strategy, err := resolveStrategy(req.Strategy, shape)
	if err != nil {
		return nil, err
	}

	cfg := s.engineCfg
	if req.Config != nil {
		cfg = *req.Config
	}

	factory := stats.PooledFactory
	if strategy == StrategyGroupAware {
		factory = stats.GroupAwareFactory
	}

	root, err := factory(req.Comments, cfg)
	if err != nil {
		return nil, fmt.Errorf("root scorer: %w", err)
	}

	tree, err := topics.Aggregate(req.Comments, factory, cfg)
	if err != nil {
		return nil, fmt.Errorf("topic aggregation: %w", err)
	}

	report := &Report{
		RunID:          uuid.New(),
		ConversationID: req.ConversationID,
		GeneratedAt:    s.clock.Now(),
		Strategy:       strategy,
		CommentCount:   root.CommentCount(),
		FilteredCount:  len(root.FilteredComments()),
		VoteCount:      root.VoteCount(),
		Groups:         topics.GroupVoteTotals(req.Comments),
		CommonGround:   makeSelection(root.CommonGround(cfg.MaxSampleSize), root.NoCommonGroundMessage()),
		Differences:    makeSelection(root.Differences(cfg.MaxSampleSize), root.NoDifferencesMessage()),
		Uncertain:      makeSelection(root.Uncertain(cfg.MaxSampleSize), ""),
		Topics:         buildTopicReports(tree, cfg.MaxSampleSize),
	}

	if grouped, ok := root.(*stats.GroupAwareScorer); ok {
		report.Representatives = representatives(grouped, cfg.MaxSampleSize)
	}
	return report, nil
}

type voteShape int

const (
	shapeNone voteShape = iota
	shapePooled
	shapeGrouped
)

// datasetShape scans every voted comment and rejects mixed shapes up front,
// before any scorer runs. A dataset must commit to one VoteInfo variant.
func datasetShape(comments []domain.Comment) (voteShape, error) {
	shape := shapeNone
	for _, c := range comments {
		if !c.HasVotes() {
			continue
		}
		current := shapePooled
		if c.Votes.IsGrouped() {
			current = shapeGrouped
		}
		if shape == shapeNone {
			shape = current
			continue
		}
		if shape != current {
			return shapeNone, fmt.Errorf("comment %q: %w", c.ID, domain.ErrMixedVoteShapes)
		}
	}
	return shape, nil
}

func resolveStrategy(requested Strategy, shape voteShape) (Strategy, error) {
	switch requested {
	case StrategyPooled:
		return StrategyPooled, nil
	case StrategyGroupAware:
		if shape != shapeGrouped {
			return "", fmt.Errorf("group-aware strategy: %w", domain.ErrGroupVotesRequired)
		}
		return StrategyGroupAware, nil
	case "":
		if shape == shapeGrouped {
			return StrategyGroupAware, nil
		}
		return StrategyPooled, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", requested)
	}
}

func makeSelection(comments []stats.RankedComment, emptyMessage string) Selection {
	sel := Selection{Comments: comments}
	if len(comments) == 0 {
		sel.Message = emptyMessage
	}
	return sel
}

func representatives(scorer *stats.GroupAwareScorer, k int) []GroupSelection {
	ids := scorer.GroupIDs()
	selections := make([]GroupSelection, 0, len(ids))
	for _, id := range ids {
		comments, err := scorer.GroupRepresentative(id, k)
		if err != nil {
			continue
		}
		selections = append(selections, GroupSelection{GroupID: id, Comments: comments})
	}
	return selections
}

// buildTopicReports flattens a scorer tree into its serializable form,
// attaching each sibling level's relative-context labels.
func buildTopicReports(nodes []topics.TopicStats, k int) []TopicReport {
	if len(nodes) == 0 {
		return nil
	}
	contexts := topics.RelativeContext(nodes)

	reports := make([]TopicReport, len(nodes))
	for i, node := range nodes {
		reports[i] = TopicReport{
			Name:            node.Name,
			CommentCount:    node.CommentCount,
			FilteredCount:   len(node.Scorer.FilteredComments()),
			VoteCount:       node.Scorer.VoteCount(),
			CommonGround:    makeSelection(node.Scorer.CommonGround(k), node.Scorer.NoCommonGroundMessage()),
			Differences:     makeSelection(node.Scorer.Differences(k), node.Scorer.NoDifferencesMessage()),
			Uncertain:       makeSelection(node.Scorer.Uncertain(k), ""),
			AlignmentLabel:  contexts[i].AlignmentLabel,
			EngagementLabel: contexts[i].EngagementLabel,
			Subtopics:       buildTopicReports(node.Subtopics, k),
		}
	}
	return reports
}
