package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/abhisek/goalpath/internal/model"
)

// Firestore is the cloud Store. Preferences live in users/{uid}; goals live
// in users/{uid}/goals/{goalId}.
type Firestore struct {
	client *firestore.Client
	log    *zap.Logger
}

var _ Store = (*Firestore)(nil)

// FirestoreConfig selects the Firebase project and credentials.
type FirestoreConfig struct {
	ProjectID string
	// CredentialsFile is a service account JSON path. Empty uses
	// application default credentials, or the emulator when
	// FIRESTORE_EMULATOR_HOST is set.
	CredentialsFile string
}

// OpenFirestore connects to Cloud Firestore through a Firebase app.
func OpenFirestore(ctx context.Context, cfg FirestoreConfig, opts ...Option) (*Firestore, error) {
	o := buildOptions(opts)

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firestore client: %w", err)
	}
	return &Firestore{client: client, log: o.logger}, nil
}

func (f *Firestore) userDoc(userID string) *firestore.DocumentRef {
	return f.client.Collection("users").Doc(userID)
}

func (f *Firestore) goals(userID string) *firestore.CollectionRef {
	return f.userDoc(userID).Collection("goals")
}

func (f *Firestore) GetPreferences(ctx context.Context, userID string) (*model.Preferences, error) {
	snap, err := f.userDoc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	p := model.DefaultPreferences()
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return &p, nil
}

func (f *Firestore) SetPreferences(ctx context.Context, userID string, patch model.PreferencesPatch) error {
	if patch.Empty() {
		return nil
	}
	fields := map[string]any{}
	if patch.DisplayName != nil {
		fields["displayName"] = *patch.DisplayName
	}
	if patch.DarkMode != nil {
		fields["darkMode"] = *patch.DarkMode
	}
	if patch.AIPersona != nil {
		fields["aiPersona"] = string(*patch.AIPersona)
	}
	if patch.TotalXP != nil {
		fields["totalXp"] = *patch.TotalXP
	}
	if _, err := f.userDoc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return nil
}

func (f *Firestore) PutGoal(ctx context.Context, userID string, g model.Goal) error {
	if g.ID == "" {
		return errors.New("put goal: empty goal id")
	}
	if _, err := f.goals(userID).Doc(g.ID).Set(ctx, g); err != nil {
		return fmt.Errorf("put goal %s: %w", g.ID, err)
	}
	return nil
}

func (f *Firestore) DeleteGoal(ctx context.Context, userID, goalID string) error {
	if _, err := f.goals(userID).Doc(goalID).Delete(ctx); err != nil {
		return fmt.Errorf("delete goal %s: %w", goalID, err)
	}
	return nil
}

func (f *Firestore) SubscribeGoals(ctx context.Context, userID string, fn func([]model.Goal)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	it := f.goals(userID).OrderBy("createdAt", firestore.Desc).Snapshots(ctx)

	// first carries the outcome of the initial snapshot, exactly once.
	first := make(chan error, 1)
	go func() {
		defer it.Stop()
		delivered := false
		report := func(err error) {
			if !delivered {
				delivered = true
				first <- err
			}
		}
		for {
			snap, err := it.Next()
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				report(context.Canceled)
				return
			}
			if err != nil {
				f.log.Error("goal snapshot listener stopped", zap.String("user_id", userID), zap.Error(err))
				report(err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				f.log.Error("read goal snapshot", zap.String("user_id", userID), zap.Error(err))
				if !delivered {
					report(err)
					return
				}
				continue
			}
			fn(decodeGoals(docs, f.log))
			report(nil)
		}
	}()

	select {
	case err := <-first:
		if err != nil {
			cancel()
			return nil, fmt.Errorf("subscribe goals: %w", err)
		}
		return cancel, nil
	case <-ctx.Done():
		cancel()
		return nil, fmt.Errorf("subscribe goals: %w", ctx.Err())
	}
}

func decodeGoals(docs []*firestore.DocumentSnapshot, log *zap.Logger) []model.Goal {
	goals := make([]model.Goal, 0, len(docs))
	for _, d := range docs {
		var g model.Goal
		if err := d.DataTo(&g); err != nil {
			log.Warn("skipping undecodable goal document", zap.String("goal_id", d.Ref.ID), zap.Error(err))
			continue
		}
		if g.ID == "" {
			g.ID = d.Ref.ID
		}
		goals = append(goals, g)
	}
	return goals
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
