package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/goalpath/internal/model"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	// A named in-memory database per test; the shared cache keeps it alive
	// for the lifetime of the store's connection.
	s, err := Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWALOnFileDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goalpath.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestPreferences_AbsentThenMerged(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, err := s.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p, "new user has no preferences")

	name := "Ada"
	require.NoError(t, s.SetPreferences(ctx, "u1", model.PreferencesPatch{DisplayName: &name}))

	p, err = s.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, model.PersonaMotivational, p.AIPersona, "unpatched fields take defaults")
	assert.Equal(t, 0, p.TotalXP)

	xp := 120
	dark := true
	require.NoError(t, s.SetPreferences(ctx, "u1", model.PreferencesPatch{TotalXP: &xp, DarkMode: &dark}))

	p, err = s.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.Preferences{
		DisplayName: "Ada",
		DarkMode:    true,
		AIPersona:   model.PersonaMotivational,
		TotalXP:     120,
	}, *p)

	other, err := s.GetPreferences(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, other, "preferences are per user")
}

func sampleGoal(id, title string, created time.Time) model.Goal {
	return model.Goal{
		ID:        id,
		Title:     title,
		CreatedAt: created,
		Status:    model.StatusNotStarted,
		Steps: []model.Step{{
			ID:         id + "-s1",
			Title:      "first",
			Difficulty: model.DifficultyMedium,
			Frequency:  model.FrequencyDaily,
			CheckIns:   []string{"2024-01-10"},
			SubSteps:   []model.SubStep{{ID: "ss", Title: "tiny"}},
		}},
	}
}

func TestPutGoal_ListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.PutGoal(ctx, "u1", sampleGoal("old", "Old", base)))
	require.NoError(t, s.PutGoal(ctx, "u1", sampleGoal("new", "New", base.Add(time.Hour))))
	require.NoError(t, s.PutGoal(ctx, "u2", sampleGoal("theirs", "Theirs", base)))

	goals, err := s.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "new", goals[0].ID)
	assert.Equal(t, "old", goals[1].ID)
	assert.Equal(t, []string{"2024-01-10"}, goals[0].Steps[0].CheckIns)
	assert.Equal(t, "tiny", goals[0].Steps[0].SubSteps[0].Title)
	assert.True(t, goals[0].CreatedAt.Equal(base.Add(time.Hour)))
}

func TestPutGoal_OverwritesAndBumpsRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g := sampleGoal("g1", "Run", time.Now())

	require.NoError(t, s.PutGoal(ctx, "u1", g))
	rev1, err := s.GoalRevision(ctx, "u1", "g1")
	require.NoError(t, err)

	g.Title = "Run a marathon"
	g.Steps = nil
	require.NoError(t, s.PutGoal(ctx, "u1", g))
	rev2, err := s.GoalRevision(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Greater(t, rev2, rev1)

	goals, err := s.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Run a marathon", goals[0].Title)
	assert.Empty(t, goals[0].Steps, "put is a full overwrite")
}

func TestPutGoal_RejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	err := s.PutGoal(context.Background(), "u1", model.Goal{Title: "x"})
	assert.Error(t, err)
}

func TestDeleteGoal(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutGoal(ctx, "u1", sampleGoal("g1", "A", time.Now())))
	require.NoError(t, s.DeleteGoal(ctx, "u1", "g1"))
	require.NoError(t, s.DeleteGoal(ctx, "u1", "missing"))

	goals, err := s.ListGoals(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, goals)

	rev, err := s.GoalRevision(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Zero(t, rev)
}

func TestListGoals_SkipsCorruptDocuments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutGoal(ctx, "u1", sampleGoal("ok", "Fine", time.Now())))
	_, err := s.DB().Exec(`INSERT INTO goals (user_id, id, revision, created_at, updated_at, doc)
		VALUES ('u1', 'bad', 999, 0, 0, '{not json')`)
	require.NoError(t, err)

	goals, err := s.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "ok", goals[0].ID)
}

// recorder collects subscription pushes.
type recorder struct {
	mu     sync.Mutex
	pushes [][]model.Goal
}

func (r *recorder) push(goals []model.Goal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, goals)
}

func (r *recorder) last() ([]model.Goal, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pushes) == 0 {
		return nil, 0
	}
	return r.pushes[len(r.pushes)-1], len(r.pushes)
}

func TestSubscribeGoals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutGoal(ctx, "u1", sampleGoal("g1", "A", time.Now())))

	rec := &recorder{}
	unsubscribe, err := s.SubscribeGoals(ctx, "u1", rec.push)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		goals, n := rec.last()
		return n >= 1 && len(goals) == 1
	}, time.Second, 5*time.Millisecond, "initial push")

	require.NoError(t, s.PutGoal(ctx, "u1", sampleGoal("g2", "B", time.Now().Add(time.Minute))))
	require.Eventually(t, func() bool {
		goals, _ := rec.last()
		return len(goals) == 2 && goals[0].ID == "g2"
	}, time.Second, 5*time.Millisecond, "push after put")

	// Another user's writes are not delivered here.
	_, before := rec.last()
	require.NoError(t, s.PutGoal(ctx, "u2", sampleGoal("x", "X", time.Now())))

	require.NoError(t, s.DeleteGoal(ctx, "u1", "g1"))
	require.Eventually(t, func() bool {
		goals, _ := rec.last()
		return len(goals) == 1 && goals[0].ID == "g2"
	}, time.Second, 5*time.Millisecond, "push after delete")
	_, after := rec.last()
	assert.Greater(t, after, before)

	unsubscribe()
	_, stopped := rec.last()
	require.NoError(t, s.PutGoal(ctx, "u1", sampleGoal("g3", "C", time.Now())))
	time.Sleep(50 * time.Millisecond)
	_, n := rec.last()
	assert.Equal(t, stopped, n, "no pushes after unsubscribe")
}

func TestSubscribeGoals_ContextCancelStops(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	rec := &recorder{}
	_, err := s.SubscribeGoals(ctx, "u1", rec.push)
	require.NoError(t, err)
	require.Eventually(t, func() bool { _, n := rec.last(); return n == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.PutGoal(context.Background(), "u1", sampleGoal("g1", "A", time.Now())))
	time.Sleep(50 * time.Millisecond)
	_, n := rec.last()
	assert.Equal(t, 1, n)
}

func TestSubscribeGoals_FirstLoadDeliveredBeforeReturn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutGoal(ctx, "u1", sampleGoal("g1", "A", time.Now())))

	rec := &recorder{}
	unsubscribe, err := s.SubscribeGoals(ctx, "u1", rec.push)
	require.NoError(t, err)
	defer unsubscribe()

	goals, n := rec.last()
	assert.Equal(t, 1, n)
	require.Len(t, goals, 1)
	assert.Equal(t, "g1", goals[0].ID)
}

func TestSubscribeGoals_FirstLoadErrorReturned(t *testing.T) {
	s := openTestStore(t)
	_, err := s.DB().Exec(`DROP TABLE goals`)
	require.NoError(t, err)

	rec := &recorder{}
	unsubscribe, err := s.SubscribeGoals(context.Background(), "u1", rec.push)
	require.Error(t, err)
	assert.Nil(t, unsubscribe)

	_, n := rec.last()
	assert.Zero(t, n)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.subs["u1"], "failed subscriptions are unregistered")
}

func TestSubscribeGoals_AfterClose(t *testing.T) {
	s, err := Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.SubscribeGoals(context.Background(), "u1", func([]model.Goal) {})
	assert.Error(t, err)
}

func TestSequenceCounter_Monotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, n, last)
		last = n
	}
}

func TestDefaultDBPath_EnvOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "g.db")
	t.Setenv("GOALPATH_DB", p)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.DirExists(t, filepath.Dir(p))
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GOALPATH_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "goalpath", "goalpath.db"), got)
}
