package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/goalpath/internal/model"
)

var _ Store = (*SQLite)(nil)

func (s *SQLite) GetPreferences(ctx context.Context, userID string) (*model.Preferences, error) {
	var p model.Preferences
	var persona string
	err := s.db.QueryRowContext(ctx,
		`SELECT display_name, dark_mode, ai_persona, total_xp FROM preferences WHERE user_id = ?`,
		userID,
	).Scan(&p.DisplayName, &p.DarkMode, &persona, &p.TotalXP)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	p.AIPersona = model.Persona(persona)
	return &p, nil
}

func (s *SQLite) SetPreferences(ctx context.Context, userID string, patch model.PreferencesPatch) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}
	base := model.DefaultPreferences()
	if current != nil {
		base = *current
	}
	p := patch.Apply(base)

	_, err = s.db.ExecContext(ctx, `INSERT INTO preferences
		(user_id, display_name, dark_mode, ai_persona, total_xp, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			dark_mode    = excluded.dark_mode,
			ai_persona   = excluded.ai_persona,
			total_xp     = excluded.total_xp,
			updated_at   = excluded.updated_at`,
		userID, p.DisplayName, p.DarkMode, string(p.AIPersona), p.TotalXP, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return nil
}

func (s *SQLite) PutGoal(ctx context.Context, userID string, g model.Goal) error {
	if g.ID == "" {
		return errors.New("put goal: empty goal id")
	}
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal goal %s: %w", g.ID, err)
	}
	rev, err := s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("put goal %s: %w", g.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO goals (user_id, id, revision, created_at, updated_at, doc)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			revision   = excluded.revision,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			doc        = excluded.doc`,
		userID, g.ID, rev, toMillis(g.CreatedAt), toMillis(time.Now()), string(doc),
	)
	if err != nil {
		return fmt.Errorf("put goal %s: %w", g.ID, err)
	}

	s.notify(userID)
	return nil
}

func (s *SQLite) DeleteGoal(ctx context.Context, userID, goalID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE user_id = ? AND id = ?`, userID, goalID)
	if err != nil {
		return fmt.Errorf("delete goal %s: %w", goalID, err)
	}
	s.notify(userID)
	return nil
}

// ListGoals returns the user's goals, newest CreatedAt first. Documents
// that fail to decode are skipped.
func (s *SQLite) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc FROM goals WHERE user_id = ? ORDER BY created_at DESC, revision DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		var g model.Goal
		if err := json.Unmarshal([]byte(doc), &g); err != nil {
			s.log.Warn("skipping undecodable goal document", zap.String("goal_id", id), zap.Error(err))
			continue
		}
		if g.ID == "" {
			g.ID = id
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// GoalRevision returns the sequence number of the last write to a goal, or
// 0 if the goal does not exist.
func (s *SQLite) GoalRevision(ctx context.Context, userID, goalID string) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx,
		`SELECT revision FROM goals WHERE user_id = ? AND id = ?`, userID, goalID).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("goal revision: %w", err)
	}
	return rev, nil
}

// subscriber delivers goal lists to one callback from its own goroutine.
// Change signals that arrive while a delivery is running collapse into a
// single follow-up delivery.
type subscriber struct {
	signal chan struct{}
	done   chan struct{}
	once   bool
}

func (sub *subscriber) poke() {
	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

// stop must be called with SQLite.mu held.
func (sub *subscriber) stop() {
	if sub.once {
		return
	}
	sub.once = true
	close(sub.done)
}

func (s *SQLite) SubscribeGoals(ctx context.Context, userID string, fn func([]model.Goal)) (func(), error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.New("subscribe goals: store closed")
	}
	sub := &subscriber{signal: make(chan struct{}, 1), done: make(chan struct{})}
	id := s.nextSub
	s.nextSub++
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]*subscriber)
	}
	s.subs[userID][id] = sub
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sub.stop()
		delete(s.subs[userID], id)
	}

	// Registered before the first load, so a write landing in between
	// still pokes a follow-up delivery.
	goals, err := s.ListGoals(ctx, userID)
	if err != nil {
		unsubscribe()
		return nil, fmt.Errorf("subscribe goals: %w", err)
	}
	fn(goals)

	go s.deliver(ctx, userID, sub, fn)
	return unsubscribe, nil
}

func (s *SQLite) deliver(ctx context.Context, userID string, sub *subscriber, fn func([]model.Goal)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		case <-sub.signal:
		}

		goals, err := s.ListGoals(ctx, userID)
		if err != nil {
			select {
			case <-sub.done:
			default:
				s.log.Error("goal subscription load failed", zap.String("user_id", userID), zap.Error(err))
			}
			continue
		}

		select {
		case <-sub.done:
			return
		default:
		}
		fn(goals)
	}
}

func (s *SQLite) notify(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs[userID] {
		sub.poke()
	}
}
