package planner

import (
	"strings"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
)

// ingestSteps converts generated steps into fresh, untracked model steps.
// Steps without a title are dropped.
func ingestSteps(in []stepOutput) []model.Step {
	steps := make([]model.Step, 0, len(in))
	for _, o := range in {
		title := strings.TrimSpace(o.Title)
		if title == "" {
			continue
		}
		steps = append(steps, model.NormalizeStep(model.Step{
			ID:            model.NewID(),
			Title:         title,
			Description:   strings.TrimSpace(o.Description),
			EstimatedTime: strings.TrimSpace(o.EstimatedTime),
			Difficulty:    model.Difficulty(o.Difficulty),
			Frequency:     model.Frequency(o.Frequency),
			Deadline:      validDate(o.Deadline),
			CheckIns:      []string{},
			SubSteps:      []model.SubStep{},
		}))
	}
	return steps
}

// ingestChanges maps empty strings to "leave unchanged". An unparseable
// deadline or unknown difficulty is treated the same way.
func ingestChanges(c changesOutput) model.StepChanges {
	var out model.StepChanges
	if d := validDate(c.Deadline); d != "" {
		out.Deadline = &d
	}
	if t := strings.TrimSpace(c.Title); t != "" {
		out.Title = &t
	}
	if d := strings.TrimSpace(c.Description); d != "" {
		out.Description = &d
	}
	if diff := model.Difficulty(c.Difficulty); diff.Valid() {
		out.Difficulty = &diff
	}
	return out
}

// validDate returns s in canonical form, or "" if it is not a date.
func validDate(s string) string {
	d, err := calendar.Parse(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return d.String()
}
