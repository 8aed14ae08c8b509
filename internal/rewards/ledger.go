package rewards

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/store"
)

// Award is one XP change caused by a check-in toggle.
type Award struct {
	GoalID    string
	StepID    string
	StepTitle string
	Delta     int
	Total     int // total after the change
	Reason    string
	AwardedAt time.Time
}

// Ledger records XP awards to the event log and keeps the awards of the
// current process for display.
type Ledger struct {
	userID    string
	eventRepo store.EventRepo
	log       *zap.Logger

	mu     sync.Mutex
	awards []Award
}

// NewLedger creates a ledger for one user. A nil repo records nothing
// durable.
func NewLedger(userID string, eventRepo store.EventRepo, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{userID: userID, eventRepo: eventRepo, log: log}
}

// Record notes an XP change that has already been applied to the total.
// A zero delta is ignored. Event log failures are logged, never returned:
// the preferences total is authoritative.
func (l *Ledger) Record(ctx context.Context, goalID string, step model.Step, delta, total int) *Award {
	if delta == 0 {
		return nil
	}
	award := &Award{
		GoalID:    goalID,
		StepID:    step.ID,
		StepTitle: step.Title,
		Delta:     delta,
		Total:     total,
		Reason:    reason(step, delta),
		AwardedAt: time.Now(),
	}
	l.persist(ctx, award, step.Difficulty)
	l.mu.Lock()
	l.awards = append(l.awards, *award)
	l.mu.Unlock()
	return award
}

// SessionAwards returns the awards recorded by this ledger, oldest first.
func (l *Ledger) SessionAwards() []Award {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Award(nil), l.awards...)
}

// SessionTotal returns the net XP recorded by this ledger.
func (l *Ledger) SessionTotal() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, a := range l.awards {
		n += a.Delta
	}
	return n
}

// Summary totals the user's recorded XP history.
func (l *Ledger) Summary(ctx context.Context) (store.XPSummary, error) {
	if l.eventRepo == nil {
		return store.XPSummary{}, nil
	}
	return l.eventRepo.XPSummary(ctx, l.userID)
}

// Recent returns the user's latest XP events, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]store.XPEventRecord, error) {
	if l.eventRepo == nil {
		return nil, nil
	}
	return l.eventRepo.QueryXPEvents(ctx, l.userID, store.QueryOpts{Limit: limit})
}

func reason(step model.Step, delta int) string {
	verb := "Completed"
	if delta < 0 {
		verb = "Undid"
	}
	if step.Frequency.Recurring() {
		return fmt.Sprintf("%s %s check-in: %s", verb, step.Frequency, step.Title)
	}
	return fmt.Sprintf("%s %s", verb, step.Title)
}

func (l *Ledger) persist(ctx context.Context, award *Award, d model.Difficulty) {
	if l.eventRepo == nil {
		return
	}
	data := store.XPEventData{
		UserID:     l.userID,
		GoalID:     award.GoalID,
		StepID:     award.StepID,
		StepTitle:  award.StepTitle,
		Difficulty: string(d),
		Delta:      award.Delta,
		Total:      award.Total,
		Reason:     award.Reason,
	}
	if err := l.eventRepo.AppendXPEvent(ctx, data); err != nil {
		l.log.Warn("failed to record xp event", zap.String("step_id", award.StepID), zap.Error(err))
	}
}
