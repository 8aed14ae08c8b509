package planner

// Config holds planner generation settings.
type Config struct {
	QuestionsMaxTokens int
	PlanMaxTokens      int
	SubStepsMaxTokens  int
	ReviewMaxTokens    int
	Temperature        float64
}

// DefaultConfig returns sensible defaults for plan generation.
func DefaultConfig() Config {
	return Config{
		QuestionsMaxTokens: 512,
		PlanMaxTokens:      2048,
		SubStepsMaxTokens:  512,
		ReviewMaxTokens:    2048,
		Temperature:        0.7,
	}
}
