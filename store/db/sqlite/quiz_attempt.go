package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/facesense/store"
)

func (d *DB) CreateQuizAttempt(ctx context.Context, create *store.QuizAttempt) (*store.QuizAttempt, error) {
	stmt := `INSERT INTO quiz_attempt (person_id, correct, latency_ms, guess)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		create.PersonID, create.Correct, create.LatencyMs, create.Guess,
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	return create, nil
}

func (d *DB) ListQuizAttempts(ctx context.Context, find *store.FindQuizAttempt) ([]*store.QuizAttempt, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.PersonID; v != nil {
		where, args = append(where, "quiz_attempt.person_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, person_id, created_ts, correct, latency_ms, guess
		FROM quiz_attempt
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY quiz_attempt.created_ts DESC, quiz_attempt.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz attempts: %w", err)
	}
	defer rows.Close()

	list := make([]*store.QuizAttempt, 0)
	for rows.Next() {
		var attempt store.QuizAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.PersonID,
			&attempt.CreatedTs,
			&attempt.Correct,
			&attempt.LatencyMs,
			&attempt.Guess,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quiz attempt: %w", err)
		}
		list = append(list, &attempt)
	}

	return list, rows.Err()
}
