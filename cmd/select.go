package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/goalpath/internal/model"
)

// visibleGoals returns the goals listed by default, newest first.
func visibleGoals(all []model.Goal) []model.Goal {
	out := make([]model.Goal, 0, len(all))
	for _, g := range all {
		if !g.Archived {
			out = append(out, g)
		}
	}
	return out
}

// pickGoal resolves a goal by its list number (1-based, among visible
// goals) or by a unique id prefix.
func pickGoal(all []model.Goal, ref string) (model.Goal, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		visible := visibleGoals(all)
		if n < 1 || n > len(visible) {
			return model.Goal{}, fmt.Errorf("no goal #%d (have %d)", n, len(visible))
		}
		return visible[n-1], nil
	}
	var found []model.Goal
	for _, g := range all {
		if strings.HasPrefix(g.ID, ref) {
			found = append(found, g)
		}
	}
	switch len(found) {
	case 0:
		return model.Goal{}, fmt.Errorf("no goal matches %q", ref)
	case 1:
		return found[0], nil
	default:
		return model.Goal{}, fmt.Errorf("goal id %q is ambiguous (%d matches)", ref, len(found))
	}
}

// pickStep resolves a step by position (1-based) or unique id prefix.
func pickStep(g model.Goal, ref string) (model.Step, int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(g.Steps) {
			return model.Step{}, -1, fmt.Errorf("no step #%d in %q (have %d)", n, g.Title, len(g.Steps))
		}
		return g.Steps[n-1], n - 1, nil
	}
	idx := -1
	for i, s := range g.Steps {
		if strings.HasPrefix(s.ID, ref) {
			if idx >= 0 {
				return model.Step{}, -1, fmt.Errorf("step id %q is ambiguous", ref)
			}
			idx = i
		}
	}
	if idx < 0 {
		return model.Step{}, -1, fmt.Errorf("no step matches %q", ref)
	}
	return g.Steps[idx], idx, nil
}

// pickSubStep resolves a sub-step by position (1-based) or unique id prefix.
func pickSubStep(s model.Step, ref string) (model.SubStep, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.SubSteps) {
			return model.SubStep{}, fmt.Errorf("no sub-step #%d (have %d)", n, len(s.SubSteps))
		}
		return s.SubSteps[n-1], nil
	}
	var found []model.SubStep
	for _, ss := range s.SubSteps {
		if strings.HasPrefix(ss.ID, ref) {
			found = append(found, ss)
		}
	}
	if len(found) != 1 {
		return model.SubStep{}, fmt.Errorf("no unique sub-step matches %q", ref)
	}
	return found[0], nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
