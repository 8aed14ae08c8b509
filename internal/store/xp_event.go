package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendXPEvent(ctx context.Context, data XPEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO xp_events
		(sequence, timestamp, user_id, goal_id, step_id, step_title, difficulty, delta, total, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, toMillis(time.Now()), data.UserID, data.GoalID, data.StepID,
		data.StepTitle, data.Difficulty, data.Delta, data.Total, data.Reason,
	)
	if err != nil {
		return fmt.Errorf("save xp event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryXPEvents(ctx context.Context, userID string, opts QueryOpts) ([]XPEventRecord, error) {
	where, args := opts.clauses([]string{"user_id = ?"}, userID)
	rows, err := r.db.QueryContext(ctx, `SELECT sequence, timestamp, user_id, goal_id, step_id,
		step_title, difficulty, delta, total, reason FROM xp_events`+where+
		` ORDER BY sequence DESC`+opts.limit(), args...)
	if err != nil {
		return nil, fmt.Errorf("query xp events: %w", err)
	}
	defer rows.Close()

	var records []XPEventRecord
	for rows.Next() {
		var rec XPEventRecord
		var ts int64
		if err := rows.Scan(&rec.Sequence, &ts, &rec.UserID, &rec.GoalID, &rec.StepID,
			&rec.StepTitle, &rec.Difficulty, &rec.Delta, &rec.Total, &rec.Reason); err != nil {
			return nil, fmt.Errorf("scan xp event: %w", err)
		}
		rec.Timestamp = fromMillis(ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) XPSummary(ctx context.Context, userID string) (XPSummary, error) {
	var sum XPSummary
	var last int64
	err := r.db.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0),
		COUNT(*),
		COALESCE(MAX(timestamp), 0)
		FROM xp_events WHERE user_id = ?`, userID,
	).Scan(&sum.Earned, &sum.Revoked, &sum.Events, &last)
	if err != nil {
		return XPSummary{}, fmt.Errorf("xp summary: %w", err)
	}
	if last > 0 {
		sum.LastSeen = fromMillis(last)
	}
	return sum, nil
}
