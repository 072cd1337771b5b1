package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/facesense/store"
)

func (d *DB) UpsertReviewState(ctx context.Context, upsert *store.ReviewState) (*store.ReviewState, error) {
	fields := []string{"person_id", "ease_factor", "interval_days", "repetitions", "total_attempts", "correct_attempts", "last_reviewed_ts", "next_review_ts"}
	placeholderValues := []any{
		upsert.PersonID, upsert.EaseFactor, upsert.IntervalDays, upsert.Repetitions,
		upsert.TotalAttempts, upsert.CorrectAttempts, upsert.LastReviewedTs, upsert.NextReviewTs,
	}

	stmt := `INSERT INTO review_state (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		ON CONFLICT (person_id) DO UPDATE SET
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			total_attempts = excluded.total_attempts,
			correct_attempts = excluded.correct_attempts,
			last_reviewed_ts = excluded.last_reviewed_ts,
			next_review_ts = excluded.next_review_ts
		RETURNING id`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(&upsert.ID); err != nil {
		return nil, fmt.Errorf("failed to upsert review state: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListReviewStates(ctx context.Context, find *store.FindReviewState) ([]*store.ReviewState, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.PersonID; v != nil {
		where, args = append(where, "review_state.person_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DueBefore; v != nil {
		where, args = append(where, "review_state.next_review_ts <= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, person_id, ease_factor, interval_days, repetitions, total_attempts, correct_attempts, last_reviewed_ts, next_review_ts
		FROM review_state
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY review_state.next_review_ts ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review states: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ReviewState, 0)
	for rows.Next() {
		var state store.ReviewState
		var lastReviewedTs sql.NullInt64

		if err := rows.Scan(
			&state.ID,
			&state.PersonID,
			&state.EaseFactor,
			&state.IntervalDays,
			&state.Repetitions,
			&state.TotalAttempts,
			&state.CorrectAttempts,
			&lastReviewedTs,
			&state.NextReviewTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review state: %w", err)
		}

		if lastReviewedTs.Valid {
			state.LastReviewedTs = &lastReviewedTs.Int64
		}
		list = append(list, &state)
	}

	return list, rows.Err()
}
