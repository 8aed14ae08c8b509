package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
)

const (
	motivationalSystemPrompt  = `You are a helpful, encouraging, and highly organized productivity coach. You focus on positive reinforcement and manageable steps.`
	drillSergeantSystemPrompt = `You are a strict, no-nonsense, hard-driving productivity coach. You demand excellence, brevity, and immediate action. Do not sugarcoat things.`
	analyticalSystemPrompt    = `You are a logical, data-driven, and highly efficient productivity strategist. Focus on optimization, clear metrics, and logical progression. Avoid emotional fluff.`
)

// SystemPrompt returns the coaching voice for a persona. Unknown personas
// get the motivational voice.
func SystemPrompt(p model.Persona) string {
	switch p {
	case model.PersonaDrillSergeant:
		return drillSergeantSystemPrompt
	case model.PersonaAnalytical:
		return analyticalSystemPrompt
	default:
		return motivationalSystemPrompt
	}
}

func writeGoalHeader(b *strings.Builder, title, motivation string) {
	b.WriteString(fmt.Sprintf("User Goal: %q\n", title))
	b.WriteString(fmt.Sprintf("User Motivation: %q\n", motivation))
}

func buildQuestionsUserMessage(title, motivation string) string {
	var b strings.Builder

	writeGoalHeader(&b, title, motivation)

	b.WriteString(`
Instructions:
To create a truly effective action plan, you need to understand the user's context better.
Generate 3 to 5 short, specific, and crucial clarifying questions to ask the user.
Focus on constraints, resources, current skill level, or specific preferences.`)

	return b.String()
}

func buildPlanUserMessage(input PlanInput) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Current Date: %s\n", input.Today))
	writeGoalHeader(&b, input.GoalTitle, input.Motivation)
	deadline := input.Deadline
	if deadline == "" {
		deadline = "None"
	}
	b.WriteString(fmt.Sprintf("Target Deadline: %q\n", deadline))

	b.WriteString("\nContext from User:\n")
	if len(input.Answers) == 0 {
		b.WriteString("None\n")
	}
	for _, qa := range input.Answers {
		b.WriteString(fmt.Sprintf("Q: %s\nA: %s\n", qa.Question, qa.Answer))
	}

	if len(input.ExistingSteps) > 0 {
		b.WriteString("\nThe plan already contains these steps, do not repeat them:\n")
		b.WriteString(existingTitles(input.ExistingSteps))
		b.WriteString("\n")
	}

	b.WriteString(`
Instructions:
Break this goal down into 5 to 8 concrete, actionable, and sequential steps.
The steps should be practical and help the user get started immediately.
1. Assign a specific deadline (YYYY-MM-DD) to each step. Deadlines should be sequential.
2. Assign a FREQUENCY to each step: 'Once', 'Daily', 'Weekly', or 'Monthly'.
   - Use 'Once' for setup tasks or milestones.
   - Use 'Daily', 'Weekly', etc. for habits or recurring practice.
Ensure the pacing is realistic given the estimated time.`)

	return b.String()
}

func buildMoreStepsUserMessage(goal model.Goal, today calendar.Date) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Current Date: %s\n", today))
	writeGoalHeader(&b, goal.Title, goal.Motivation)

	b.WriteString("\nThe user already has the following steps in their plan:\n")
	if len(goal.Steps) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(existingTitles(goal.Steps))
	}

	b.WriteString(`

Instructions:
Generate 3 to 5 *additional* concrete, actionable steps to continue this plan or fill in gaps.
Do not repeat existing steps.
Assign appropriate frequency (Once, Daily, Weekly, Monthly) to new steps.`)

	return b.String()
}

// existingTitles renders steps as "title (frequency)" joined by commas.
func existingTitles(steps []model.Step) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = fmt.Sprintf("%s (%s)", s.Title, s.Frequency)
	}
	return strings.Join(parts, ", ")
}

func buildSubStepsUserMessage(goal model.Goal, step model.Step) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Goal: %q\n", goal.Title))
	b.WriteString(fmt.Sprintf("Parent Task: %q\n", step.Title))
	b.WriteString(fmt.Sprintf("Task Description: %q\n", step.Description))

	b.WriteString(`
Instructions:
The user is finding this specific task a bit overwhelming or vague.
Break this SINGLE parent task down into 3 to 5 "micro-steps".
These should be atomic, extremely concrete actions that can be done in 5-10 minutes each.`)

	return b.String()
}

// reviewStep is the condensed view of a step sent with a weekly review.
type reviewStep struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Deadline      string          `json:"deadline,omitempty"`
	Frequency     model.Frequency `json:"frequency"`
	IsCompleted   bool            `json:"isCompleted"`
	CheckInsCount int             `json:"checkInsCount"`
	LastCheckIn   string          `json:"lastCheckIn"`
}

func condenseSteps(steps []model.Step) []reviewStep {
	out := make([]reviewStep, len(steps))
	for i, s := range steps {
		last := "Never"
		if n := len(s.CheckIns); n > 0 {
			last = s.CheckIns[n-1]
		}
		out[i] = reviewStep{
			ID:            s.ID,
			Title:         s.Title,
			Deadline:      s.Deadline,
			Frequency:     s.Frequency,
			IsCompleted:   s.IsCompleted,
			CheckInsCount: len(s.CheckIns),
			LastCheckIn:   last,
		}
	}
	return out
}

func buildReviewUserMessage(input ReviewInput) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Current Date: %s\n", input.Today))
	b.WriteString(fmt.Sprintf("User Goal: %q\n", input.Goal.Title))

	b.WriteString("\nContext:\nThe user is doing a Weekly Review.\n")
	b.WriteString(fmt.Sprintf("User Reflection: %q\n", input.Reflection))
	b.WriteString(fmt.Sprintf("Self-Reported Mood/Satisfaction (1-5): %d/5\n", input.Mood))

	plan, err := json.MarshalIndent(condenseSteps(input.Goal.Steps), "", "  ")
	if err != nil {
		plan = []byte("[]")
	}
	b.WriteString("\nPlan Status:\n")
	b.Write(plan)
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf(`
Instructions:
1. Analyze the user's progress. Be specific about what they did well and what they missed.
   Adopt the persona of a %s coach.
2. Suggest specific modifications to the plan to help them get back on track or maintain momentum.
   - IF tasks are overdue (deadline passed and not completed), reschedule them to a future date starting from tomorrow.
   - IF the user is overwhelmed (low mood, missed many tasks), suggest setting deadlines further apart or simplifying descriptions.
   - IF the user is crushing it, maybe add a challenging new step.
   - DO NOT modify tasks that are already completed.
3. For each modification, return an empty string for every field you do not change.
   Only reference step IDs listed in the plan status above.`, input.Persona))

	return b.String()
}
