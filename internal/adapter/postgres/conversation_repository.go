package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deliberation-tools/groundwork/internal/domain"
)

// ConversationRepo loads already-categorized comments with their vote
// tallies and topic labels.
type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

// GetComments returns every comment of a conversation, assembled into the
// engine's input shape. Topic and vote rows are folded per comment; a NULL
// group name makes a pooled tally, anything else a per-group one.
func (r *ConversationRepo) GetComments(ctx context.Context, conversationID string) ([]domain.Comment, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, conversationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}
	if !exists {
		return nil, domain.ErrConversationNotFound
	}

	comments, order, err := r.loadComments(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	topicRows, err := r.loadTopicRows(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	foldTopics(topicRows, comments)

	voteRows, err := r.loadVoteRows(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := foldVotes(voteRows, comments); err != nil {
		return nil, err
	}

	result := make([]domain.Comment, 0, len(order))
	for _, id := range order {
		result = append(result, *comments[id])
	}
	return result, nil
}

func (r *ConversationRepo) loadComments(ctx context.Context, conversationID string) (map[string]*domain.Comment, []string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, body FROM comments WHERE conversation_id = $1 ORDER BY id`, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := map[string]*domain.Comment{}
	var order []string
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.Text); err != nil {
			return nil, nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments[c.ID] = &c
		order = append(order, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read comments: %w", err)
	}
	return comments, order, nil
}

// topicRow is one comment_topics row. A NULL subtopic marks a leaf-level
// topic label.
type topicRow struct {
	commentID string
	topic     string
	subtopic  *string
}

func (r *ConversationRepo) loadTopicRows(ctx context.Context, conversationID string) ([]topicRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT comment_id, topic, subtopic
		 FROM comment_topics WHERE conversation_id = $1
		 ORDER BY comment_id, topic, subtopic`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var result []topicRow
	for rows.Next() {
		var row topicRow
		if err := rows.Scan(&row.commentID, &row.topic, &row.subtopic); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read topics: %w", err)
	}
	return result, nil
}

// voteRow is one comment_votes row. A NULL group name marks a pooled tally.
type voteRow struct {
	commentID string
	groupName *string
	tally     domain.VoteTally
}

func (r *ConversationRepo) loadVoteRows(ctx context.Context, conversationID string) ([]voteRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT comment_id, group_name, agrees, disagrees, passes
		 FROM comment_votes WHERE conversation_id = $1
		 ORDER BY comment_id, group_name`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	var result []voteRow
	for rows.Next() {
		var row voteRow
		if err := rows.Scan(&row.commentID, &row.groupName, &row.tally.AgreeCount, &row.tally.DisagreeCount, &row.tally.PassCount); err != nil {
			return nil, fmt.Errorf("failed to scan votes: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}
	return result, nil
}

// foldTopics attaches topic labels to their comments. Rows of the same
// (comment, topic) pair fold into one Topic with its subtopics sorted by
// name; rows referencing unknown comments are dropped.
func foldTopics(rows []topicRow, comments map[string]*domain.Comment) {
	type topicKey struct{ commentID, topic string }
	subtopics := map[topicKey][]string{}
	var keys []topicKey
	for _, row := range rows {
		key := topicKey{row.commentID, row.topic}
		if _, seen := subtopics[key]; !seen {
			keys = append(keys, key)
			subtopics[key] = nil
		}
		if row.subtopic != nil {
			subtopics[key] = append(subtopics[key], *row.subtopic)
		}
	}

	for _, key := range keys {
		comment, ok := comments[key.commentID]
		if !ok {
			continue
		}
		topic := domain.Topic{Name: key.topic}
		names := subtopics[key]
		sort.Strings(names)
		for _, name := range names {
			topic.Subtopics = append(topic.Subtopics, domain.Topic{Name: name})
		}
		comment.Topics = append(comment.Topics, topic)
	}
}

// foldVotes attaches vote tallies to their comments. Rows with a NULL group
// fold additively into one pooled tally per comment, the rest into a
// per-group map; a comment carrying both shapes fails with
// ErrMixedVoteShapes. Rows referencing unknown comments are dropped.
func foldVotes(rows []voteRow, comments map[string]*domain.Comment) error {
	pooled := map[string]domain.VoteTally{}
	grouped := map[string]map[string]domain.VoteTally{}
	for _, row := range rows {
		if row.groupName == nil {
			pooled[row.commentID] = pooled[row.commentID].Add(row.tally)
			continue
		}
		if grouped[row.commentID] == nil {
			grouped[row.commentID] = map[string]domain.VoteTally{}
		}
		grouped[row.commentID][*row.groupName] = grouped[row.commentID][*row.groupName].Add(row.tally)
	}

	for commentID, tally := range pooled {
		if _, both := grouped[commentID]; both {
			return fmt.Errorf("comment %q: %w", commentID, domain.ErrMixedVoteShapes)
		}
		comment, ok := comments[commentID]
		if !ok {
			continue
		}
		votes, err := domain.PooledVotes(tally)
		if err != nil {
			return fmt.Errorf("comment %q: %w", commentID, err)
		}
		comment.Votes = &votes
	}
	for commentID, tallies := range grouped {
		comment, ok := comments[commentID]
		if !ok {
			continue
		}
		votes, err := domain.GroupVotes(tallies)
		if err != nil {
			return fmt.Errorf("comment %q: %w", commentID, err)
		}
		comment.Votes = &votes
	}
	return nil
}
