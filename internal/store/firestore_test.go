package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/goalpath/internal/model"
)

// openEmulatorStore connects to a local Firestore emulator. Tests are
// skipped unless FIRESTORE_EMULATOR_HOST is set.
func openEmulatorStore(t *testing.T) *Firestore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	f, err := OpenFirestore(context.Background(), FirestoreConfig{ProjectID: "goalpath-test"})
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFirestore_PreferencesMerge(t *testing.T) {
	f := openEmulatorStore(t)
	ctx := context.Background()
	user := uuid.NewString()

	p, err := f.GetPreferences(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, p)

	persona := model.PersonaAnalytical
	require.NoError(t, f.SetPreferences(ctx, user, model.PreferencesPatch{AIPersona: &persona}))
	xp := 40
	require.NoError(t, f.SetPreferences(ctx, user, model.PreferencesPatch{TotalXP: &xp}))

	p, err = f.GetPreferences(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.PersonaAnalytical, p.AIPersona)
	assert.Equal(t, 40, p.TotalXP)
}

func TestFirestore_GoalsSubscription(t *testing.T) {
	f := openEmulatorStore(t)
	ctx := context.Background()
	user := uuid.NewString()

	var mu sync.Mutex
	var latest []model.Goal
	unsubscribe, err := f.SubscribeGoals(ctx, user, func(goals []model.Goal) {
		mu.Lock()
		latest = goals
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsubscribe()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, f.PutGoal(ctx, user, sampleGoal("a", "A", now)))
	require.NoError(t, f.PutGoal(ctx, user, sampleGoal("b", "B", now.Add(time.Minute))))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 2 && latest[0].ID == "b"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, f.DeleteGoal(ctx, user, "b"))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 1 && latest[0].ID == "a"
	}, 5*time.Second, 20*time.Millisecond)
}
