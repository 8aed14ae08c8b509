package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/llm"
	"github.com/abhisek/goalpath/internal/model"
)

// Service turns goals into scheduled steps using an LLM provider.
// All methods are synchronous and safe for concurrent use.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// NewService creates a planner. A nil logger disables logging.
func NewService(provider llm.Provider, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

type questionsOutput struct {
	Questions []string `json:"questions"`
}

type stepOutput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`
	Difficulty    string `json:"difficulty"`
	Frequency     string `json:"frequency"`
	Deadline      string `json:"deadline"`
}

type planOutput struct {
	Steps []stepOutput `json:"steps"`
}

type subStepsOutput struct {
	SubSteps []struct {
		Title string `json:"title"`
	} `json:"subSteps"`
}

type changesOutput struct {
	Deadline    string `json:"deadline"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

type reviewOutput struct {
	Analysis      string `json:"analysis"`
	Modifications []struct {
		StepID  string        `json:"stepId"`
		Changes changesOutput `json:"changes"`
	} `json:"modifications"`
	NewSteps []stepOutput `json:"newSteps"`
}

// generate runs one structured request and decodes the result into out.
// goalID is empty for calls made before the goal exists.
func (s *Service) generate(ctx context.Context, purpose, goalID, userMsg string, persona model.Persona, schema *llm.Schema, maxTokens int, out any) error {
	ctx = llm.WithCall(ctx, llm.Call{Purpose: purpose, GoalID: goalID})

	req := llm.NewRequest(SystemPrompt(persona), userMsg, schema, maxTokens)
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return &ServiceError{Op: purpose, Err: err}
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return &ServiceError{Op: purpose, Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}

// ClarifyingQuestions asks the planner what it needs to know before
// drafting a plan. It never fails: on any error the fallback questions are
// returned.
func (s *Service) ClarifyingQuestions(ctx context.Context, title, motivation string, persona model.Persona) []string {
	var out questionsOutput
	err := s.generate(ctx, PurposeClarify, "", buildQuestionsUserMessage(title, motivation), persona,
		QuestionsSchema, s.cfg.QuestionsMaxTokens, &out)
	if err != nil {
		s.log.Warn("clarifying questions failed, using fallback", zap.Error(err))
		return append([]string(nil), FallbackQuestions...)
	}

	questions := make([]string, 0, len(out.Questions))
	for _, q := range out.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		s.log.Warn("planner returned no clarifying questions, using fallback")
		return append([]string(nil), FallbackQuestions...)
	}
	return questions
}

// ActionPlan drafts the initial steps of a new goal.
func (s *Service) ActionPlan(ctx context.Context, input PlanInput) ([]model.Step, error) {
	var out planOutput
	if err := s.generate(ctx, PurposePlan, "", buildPlanUserMessage(input), input.Persona,
		PlanSchema, s.cfg.PlanMaxTokens, &out); err != nil {
		return nil, err
	}
	return ingestSteps(out.Steps), nil
}

// MoreSteps proposes additional steps that extend an existing plan.
func (s *Service) MoreSteps(ctx context.Context, goal model.Goal, today calendar.Date, persona model.Persona) ([]model.Step, error) {
	var out planOutput
	if err := s.generate(ctx, PurposeMoreSteps, goal.ID, buildMoreStepsUserMessage(goal, today), persona,
		PlanSchema, s.cfg.PlanMaxTokens, &out); err != nil {
		return nil, err
	}
	return ingestSteps(out.Steps), nil
}

// SubSteps breaks one step of a goal down into micro-steps.
func (s *Service) SubSteps(ctx context.Context, goal model.Goal, step model.Step, persona model.Persona) ([]model.SubStep, error) {
	var out subStepsOutput
	if err := s.generate(ctx, PurposeSubSteps, goal.ID, buildSubStepsUserMessage(goal, step), persona,
		SubStepsSchema, s.cfg.SubStepsMaxTokens, &out); err != nil {
		return nil, err
	}

	subs := make([]model.SubStep, 0, len(out.SubSteps))
	for _, ss := range out.SubSteps {
		title := strings.TrimSpace(ss.Title)
		if title == "" {
			continue
		}
		subs = append(subs, model.SubStep{ID: model.NewID(), Title: title})
	}
	return subs, nil
}

// WeeklyReview asks the coach to assess the past week and suggest plan
// changes. The suggestion is not applied here.
func (s *Service) WeeklyReview(ctx context.Context, goal model.Goal, reflection string, mood int, today calendar.Date, persona model.Persona) (*model.ReviewResponse, error) {
	if !persona.Valid() {
		persona = model.PersonaMotivational
	}
	input := ReviewInput{
		Goal:       goal,
		Reflection: reflection,
		Mood:       clampMood(mood),
		Today:      today,
		Persona:    persona,
	}

	var out reviewOutput
	if err := s.generate(ctx, PurposeReview, goal.ID, buildReviewUserMessage(input), persona,
		ReviewSchema, s.cfg.ReviewMaxTokens, &out); err != nil {
		return nil, err
	}

	resp := &model.ReviewResponse{
		Analysis:      out.Analysis,
		Modifications: make([]model.StepUpdate, 0, len(out.Modifications)),
		NewSteps:      ingestSteps(out.NewSteps),
	}
	for _, m := range out.Modifications {
		if m.StepID == "" {
			continue
		}
		resp.Modifications = append(resp.Modifications, model.StepUpdate{
			StepID:  m.StepID,
			Changes: ingestChanges(m.Changes),
		})
	}
	return resp, nil
}

func clampMood(mood int) int {
	if mood < 1 {
		return 1
	}
	if mood > 5 {
		return 5
	}
	return mood
}
