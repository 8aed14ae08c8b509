package goals

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/goalpath/internal/llm"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/planner"
	"github.com/abhisek/goalpath/internal/rewards"
	"github.com/abhisek/goalpath/internal/store"
)

// fakeStore is an in-memory store.Store with injectable failures. Pushes
// are delivered synchronously, and only on subscribe or via push.
type fakeStore struct {
	mu      sync.Mutex
	prefs   *model.Preferences
	goals   map[string]model.Goal
	patches []model.PreferencesPatch
	puts    int
	subFn   func([]model.Goal)

	putErr   error
	prefsErr error
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore(goals ...model.Goal) *fakeStore {
	f := &fakeStore{goals: map[string]model.Goal{}}
	for _, g := range goals {
		f.goals[g.ID] = g
	}
	return f
}

func (f *fakeStore) GetPreferences(_ context.Context, _ string) (*model.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prefs == nil {
		return nil, nil
	}
	p := *f.prefs
	return &p, nil
}

func (f *fakeStore) SetPreferences(_ context.Context, _ string, patch model.PreferencesPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prefsErr != nil {
		return f.prefsErr
	}
	base := model.DefaultPreferences()
	if f.prefs != nil {
		base = *f.prefs
	}
	p := patch.Apply(base)
	f.prefs = &p
	f.patches = append(f.patches, patch)
	return nil
}

func (f *fakeStore) SubscribeGoals(_ context.Context, _ string, fn func([]model.Goal)) (func(), error) {
	f.mu.Lock()
	f.subFn = fn
	list := f.listLocked()
	f.mu.Unlock()
	fn(list)
	return func() {
		f.mu.Lock()
		f.subFn = nil
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) PutGoal(_ context.Context, _ string, g model.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.goals[g.ID] = g.Clone()
	return nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, _ string, goalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	delete(f.goals, goalID)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) listLocked() []model.Goal {
	out := make([]model.Goal, 0, len(f.goals))
	for _, g := range f.goals {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// push delivers goals to the subscriber as if they came from the backend.
func (f *fakeStore) push(goals []model.Goal) {
	f.mu.Lock()
	fn := f.subFn
	f.mu.Unlock()
	if fn != nil {
		fn(goals)
	}
}

// fixedClock returns 2024-01-10 10:00 UTC.
func fixedClock() time.Time {
	return time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
}

func startService(t *testing.T, st *fakeStore, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock), WithLocation(time.UTC)}, opts...)
	svc := NewService("u1", st, opts...)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(svc.Stop)
	return svc
}

func TestStart_CreatesDefaultPreferences(t *testing.T) {
	st := newFakeStore()
	svc := startService(t, st)

	assert.Equal(t, model.DefaultPreferences(), svc.Preferences())
	require.NotNil(t, st.prefs)
	assert.Equal(t, model.PersonaMotivational, st.prefs.AIPersona)
	assert.Empty(t, svc.Goals())
}

func TestStart_LoadsAndNormalizes(t *testing.T) {
	st := newFakeStore(model.Goal{
		ID:       "g1",
		Title:    "Stale",
		Progress: 100,
		Status:   model.StatusCompleted,
		Steps:    []model.Step{{ID: "s1", Frequency: "Hourly", Difficulty: "??"}},
	})
	st.prefs = &model.Preferences{AIPersona: "Pirate", TotalXP: 40}
	svc := startService(t, st)

	assert.Equal(t, model.PersonaMotivational, svc.Preferences().AIPersona)
	assert.Equal(t, 40, svc.Preferences().TotalXP)

	goals := svc.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, model.FrequencyOnce, goals[0].Steps[0].Frequency)
	assert.Equal(t, model.DifficultyEasy, goals[0].Steps[0].Difficulty)
	assert.Zero(t, goals[0].Progress, "stale caches are recomputed")
	assert.Equal(t, model.StatusNotStarted, goals[0].Status)
}

func TestStart_PreferencesError(t *testing.T) {
	st := newFakeStore()
	st.prefsErr = errors.New("offline")
	svc := NewService("u1", st)
	assert.Error(t, svc.Start(context.Background()))
}

// silentStore subscribes but never pushes; its listener fails after a delay.
type silentStore struct {
	*fakeStore
	listenErr error
}

func (s *silentStore) SubscribeGoals(ctx context.Context, _ string, _ func([]model.Goal)) (func(), error) {
	failed := make(chan error, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		failed <- s.listenErr
	}()
	select {
	case err := <-failed:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestStart_ListenerFailureReturnsError(t *testing.T) {
	st := &silentStore{fakeStore: newFakeStore(), listenErr: errors.New("permission denied")}
	svc := NewService("u1", st)

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after the listener failed")
	}
}

func TestMerge_PersistsGeneratedIDsOnce(t *testing.T) {
	g := testGoal()
	g.Steps[0].ID = ""
	g.Steps[1].SubSteps = []model.SubStep{{Title: "warm up"}}
	st := newFakeStore(g)
	svc := startService(t, st)

	assert.Equal(t, 1, st.puts, "goal with generated ids is written back")
	loaded, ok := svc.Goal("g1")
	require.True(t, ok)
	minted := loaded.Steps[0].ID
	require.NotEmpty(t, minted)
	assert.Equal(t, minted, st.goals["g1"].Steps[0].ID)
	assert.NotEmpty(t, st.goals["g1"].Steps[1].SubSteps[0].ID)

	// The echo carries the persisted ids; nothing is minted or written again.
	st.push(st.listLocked())
	assert.Equal(t, 1, st.puts)
	loaded, _ = svc.Goal("g1")
	assert.Equal(t, minted, loaded.Steps[0].ID)

	res, changed, err := svc.ToggleStep(context.Background(), "g1", minted)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, res.Goal.Steps[0].IsCompleted)
}

func TestPushReplacesWholesale(t *testing.T) {
	st := newFakeStore(testGoal())
	svc := startService(t, st)
	require.Len(t, svc.Goals(), 1)

	other := testGoal()
	other.ID = "g2"
	other.Steps = other.Steps[:1]
	st.push([]model.Goal{other})

	goals := svc.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, "g2", goals[0].ID)
	assert.Len(t, goals[0].Steps, 1)
}

func TestToggleStep_PersistsGoalAndXP(t *testing.T) {
	st := newFakeStore(testGoal())
	core, logs := observer.New(zapcore.DebugLevel)
	repo := &recordingRepo{}
	ledger := rewards.NewLedger("u1", repo, nil)
	svc := startService(t, st, WithLogger(zap.New(core)), WithLedger(ledger))

	res, changed, err := svc.ToggleStep(context.Background(), "g1", "daily")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, 50, res.Delta)

	assert.Equal(t, 50, svc.Preferences().TotalXP)
	require.Len(t, st.patches, 2, "default creation plus one XP patch")
	require.NotNil(t, st.patches[1].TotalXP)
	assert.Equal(t, 50, *st.patches[1].TotalXP)
	assert.Nil(t, st.patches[1].AIPersona)

	stored := st.goals["g1"]
	assert.Equal(t, []string{"2024-01-09", "2024-01-10"}, stored.Steps[1].CheckIns)
	assert.Equal(t, 25.0, stored.Progress)

	require.Len(t, repo.events, 1)
	assert.Equal(t, 50, repo.events[0].Delta)
	assert.Equal(t, 50, ledger.SessionTotal())
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestToggleStep_ClampedDeltaRecordsApplied(t *testing.T) {
	g := testGoal()
	g.Steps[1].CheckIns = []string{"2024-01-10"}
	st := newFakeStore(g)
	st.prefs = &model.Preferences{AIPersona: model.PersonaMotivational, TotalXP: 20}
	repo := &recordingRepo{}
	svc := startService(t, st, WithLedger(rewards.NewLedger("u1", repo, nil)))

	res, _, err := svc.ToggleStep(context.Background(), "g1", "daily")
	require.NoError(t, err)
	assert.Equal(t, -50, res.Delta)
	assert.Equal(t, 0, svc.Preferences().TotalXP)
	require.Len(t, repo.events, 1)
	assert.Equal(t, -20, repo.events[0].Delta)
}

func TestToggleStep_NotFoundIsNoop(t *testing.T) {
	st := newFakeStore(testGoal())
	core, logs := observer.New(zapcore.DebugLevel)
	svc := startService(t, st, WithLogger(zap.New(core)))

	_, changed, err := svc.ToggleStep(context.Background(), "missing", "daily")
	require.NoError(t, err)
	assert.False(t, changed)

	_, changed, err = svc.ToggleStep(context.Background(), "g1", "missing")
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Zero(t, st.puts)
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.DebugLevel).FilterMessageSnippet("not found").Len())
}

func TestToggleStep_PersistFailureKeepsOverlay(t *testing.T) {
	st := newFakeStore(testGoal())
	svc := startService(t, st)
	st.putErr = errors.New("disk full")
	st.prefsErr = errors.New("disk full")

	_, changed, err := svc.ToggleStep(context.Background(), "g1", "once")
	require.True(t, changed)

	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "g1", pe.GoalID)

	g, ok := svc.Goal("g1")
	require.True(t, ok)
	assert.True(t, g.Steps[0].IsCompleted, "optimistic state is not rolled back")
	assert.Equal(t, 10, svc.Preferences().TotalXP)

	// The next push from the backend reconciles.
	st.push([]model.Goal{testGoal()})
	g, _ = svc.Goal("g1")
	assert.False(t, g.Steps[0].IsCompleted)
}

func TestStructuralIntents(t *testing.T) {
	st := newFakeStore(testGoal())
	svc := startService(t, st)
	ctx := context.Background()

	g, changed, err := svc.AddStep(ctx, "g1", model.Step{Title: "Stretch"})
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, g.Steps, 5)
	newID := g.Steps[4].ID

	g, changed, err = svc.MoveStep(ctx, "g1", newID, 0)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, newID, g.Steps[0].ID)

	g, changed, err = svc.SetStepDeadline(ctx, "g1", newID, "2024-02-01")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, "2024-02-01", g.Steps[0].Deadline)

	g, changed, err = svc.ToggleSubStep(ctx, "g1", "once", "ss1")
	require.NoError(t, err)
	require.True(t, changed)
	assert.True(t, g.Steps[1].SubSteps[0].IsCompleted)

	g, changed, err = svc.DeleteStep(ctx, "g1", newID)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Len(t, g.Steps, 4)

	g, changed, err = svc.SetArchived(ctx, "g1", true)
	require.NoError(t, err)
	require.True(t, changed)
	assert.True(t, st.goals["g1"].Archived)
	assert.Equal(t, 1, svc.Summary().Archived)

	_, changed, err = svc.MoveStep(ctx, "nope", newID, 0)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, 6, st.puts)
}

func TestDeleteGoal(t *testing.T) {
	st := newFakeStore(testGoal())
	svc := startService(t, st)

	removed, err := svc.DeleteGoal(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, svc.Goals())
	assert.Empty(t, st.goals)

	removed, err = svc.DeleteGoal(context.Background(), "g1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUpdatePreferences(t *testing.T) {
	st := newFakeStore()
	svc := startService(t, st)
	ctx := context.Background()

	persona := model.PersonaAnalytical
	xp := 9999
	prefs, err := svc.UpdatePreferences(ctx, model.PreferencesPatch{AIPersona: &persona, TotalXP: &xp})
	require.NoError(t, err)
	assert.Equal(t, model.PersonaAnalytical, prefs.AIPersona)
	assert.Zero(t, prefs.TotalXP, "xp is owned by the ledger")
	assert.Zero(t, st.prefs.TotalXP)

	bad := model.Persona("Pirate")
	_, err = svc.UpdatePreferences(ctx, model.PreferencesPatch{AIPersona: &bad})
	assert.Error(t, err)
	assert.Equal(t, model.PersonaAnalytical, svc.Preferences().AIPersona)
}

func planResponse(titles ...string) llm.MockResponse {
	steps := make([]map[string]string, len(titles))
	for i, title := range titles {
		steps[i] = map[string]string{
			"title": title, "description": "d", "estimatedTime": "10 mins",
			"difficulty": "Medium", "frequency": "Daily", "deadline": "2024-01-20",
		}
	}
	return llm.MockJSON(map[string]any{"steps": steps})
}

func newPlanner(responses ...llm.MockResponse) (*planner.Service, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	return planner.NewService(mock, planner.DefaultConfig(), nil), mock
}

func TestCreateGoal(t *testing.T) {
	st := newFakeStore(testGoal())
	st.prefs = &model.Preferences{AIPersona: model.PersonaDrillSergeant}
	p, mock := newPlanner(planResponse("Read docs", "Write code"))
	svc := startService(t, st, WithPlanner(p))

	g, err := svc.CreateGoal(context.Background(), NewGoalRequest{
		Title:      "Learn Go",
		Motivation: "Career",
		Answers:    []planner.QA{{Question: "Time?", Answer: "1h/day"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Learn Go", g.Title)
	assert.Equal(t, fixedClock(), g.CreatedAt)
	require.Len(t, g.Steps, 2)
	assert.Equal(t, model.StatusNotStarted, g.Status)

	goals := svc.Goals()
	require.Len(t, goals, 2)
	assert.Equal(t, g.ID, goals[0].ID, "newest first")
	assert.Contains(t, st.goals, g.ID)
	assert.Equal(t, planner.SystemPrompt(model.PersonaDrillSergeant), mock.LastRequest().System)
}

func TestCreateGoal_PlannerFailureCommitsNothing(t *testing.T) {
	st := newFakeStore()
	p, _ := newPlanner(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	svc := startService(t, st, WithPlanner(p))

	_, err := svc.CreateGoal(context.Background(), NewGoalRequest{Title: "x"})
	var ese *ExternalServiceError
	require.ErrorAs(t, err, &ese)
	var pse *planner.ServiceError
	assert.ErrorAs(t, err, &pse)

	assert.Empty(t, svc.Goals())
	assert.Zero(t, st.puts)
}

func TestCreateGoal_NoPlanner(t *testing.T) {
	svc := startService(t, newFakeStore())
	_, err := svc.CreateGoal(context.Background(), NewGoalRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrNoPlanner)
	assert.Equal(t, planner.FallbackQuestions, svc.ClarifyingQuestions(context.Background(), "x", ""))
}

func TestGenerateMoreSteps(t *testing.T) {
	st := newFakeStore(testGoal())
	p, mock := newPlanner(planResponse("Hills", "Intervals", "Tempo"))
	svc := startService(t, st, WithPlanner(p))

	g, changed, err := svc.GenerateMoreSteps(context.Background(), "g1")
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, g.Steps, 7)
	assert.Equal(t, "Hills", g.Steps[4].Title)
	assert.Contains(t, mock.LastRequest().Messages[0].Content, "Run (Daily)")

	_, changed, err = svc.GenerateMoreSteps(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, mock.CallCount(), "no planner call for a missing goal")
}

func TestBreakDownStep(t *testing.T) {
	st := newFakeStore(testGoal())
	p, _ := newPlanner(
		llm.MockJSON(map[string]any{"subSteps": []map[string]string{{"title": "Lace up"}, {"title": "Go outside"}}}),
		llm.MockResponse{Err: errors.New("boom")},
	)
	svc := startService(t, st, WithPlanner(p))

	g, changed, err := svc.BreakDownStep(context.Background(), "g1", "daily")
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, g.Steps[1].SubSteps, 2)
	assert.Equal(t, "Lace up", g.Steps[1].SubSteps[0].Title)

	before, _ := svc.Goal("g1")
	_, changed, err = svc.BreakDownStep(context.Background(), "g1", "once")
	var ese *ExternalServiceError
	require.ErrorAs(t, err, &ese)
	assert.False(t, changed)
	after, _ := svc.Goal("g1")
	assert.Equal(t, before, after)
}

func TestWeeklyReview_ThenApply(t *testing.T) {
	st := newFakeStore(testGoal())
	p, _ := newPlanner(llm.MockJSON(map[string]any{
		"analysis": "Keep going.",
		"modifications": []map[string]any{
			{"stepId": "once", "changes": map[string]string{"deadline": "2024-01-15", "title": "", "description": "", "difficulty": ""}},
		},
		"newSteps": []map[string]string{},
	}))
	svc := startService(t, st, WithPlanner(p))
	ctx := context.Background()

	review, err := svc.WeeklyReview(ctx, "g1", "Good week", 4)
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "Keep going.", review.Analysis)
	assert.Zero(t, st.puts, "a review alone changes nothing")

	g, changed, err := svc.ApplyReview(ctx, "g1", *review)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, "2024-01-15", g.Steps[0].Deadline)
	assert.Equal(t, "Buy shoes", g.Steps[0].Title)
}

func TestToday_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-12", -12*3600)
	svc := NewService("u1", newFakeStore(), WithClock(fixedClock), WithLocation(loc))
	// 10:00 UTC is 22:00 the previous day at UTC-12.
	assert.Equal(t, "2024-01-09", svc.Today().String())
}

// recordingRepo captures XP events.
type recordingRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.XPEventData
}

func (r *recordingRepo) AppendXPEvent(_ context.Context, data store.XPEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}
