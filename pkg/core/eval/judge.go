package eval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"agentic_finqa/pkg/core/utils"
)

const defaultJudgeModel = "gemini-3-flash-preview"

const judgeSystem = "You are a strict but fair financial analysis evaluator."

const judgeRubric = `You are an expert financial analyst evaluating AI-generated financial analysis.

QUERY: %s

RESPONSE: %s

Score the response on each criterion from 1 to 10:

1. ACCURACY (40%% weight): Are the financial figures correct? Are calculations accurate?
2. COMPLETENESS (25%% weight): Does it fully address the query? Any missing elements?
3. CLARITY (15%% weight): Is the explanation clear and well-structured?
4. SOURCING (10%% weight): Are data sources properly cited?
5. INSIGHT (10%% weight): Does it provide valuable business insights?

Reply with JSON only:
{"accuracy": 0, "completeness": 0, "clarity": 0, "sourcing": 0, "insight": 0, "feedback": "specific feedback for improvement"}`

// Verdict is the judge's category scores on a 1-10 scale. A zero means
// the judge skipped the category; it still drags the weighted score.
type Verdict struct {
	Accuracy     int    `json:"accuracy"`
	Completeness int    `json:"completeness"`
	Clarity      int    `json:"clarity"`
	Sourcing     int    `json:"sourcing"`
	Insight      int    `json:"insight"`
	Feedback     string `json:"feedback"`
}

// WeightedScore collapses the categories into one score, accuracy
// weighted heaviest, rounded to one decimal.
func (v Verdict) WeightedScore() float64 {
	score := 0.40*float64(v.Accuracy) +
		0.25*float64(v.Completeness) +
		0.15*float64(v.Clarity) +
		0.10*float64(v.Sourcing) +
		0.10*float64(v.Insight)
	return math.Round(score*10) / 10
}

// Judge scores answers with a Gemini model. It is a direct client rather
// than a pipeline role: judging runs offline over result sets and must
// not inherit the synthesis provider configuration.
type Judge struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewJudge connects to Gemini using GEMINI_API_KEY. modelName may be
// empty to use the default.
func NewJudge(ctx context.Context, modelName string, log zerolog.Logger) (*Judge, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	if modelName == "" {
		modelName = defaultJudgeModel
	}
	return &Judge{
		client: client,
		model:  modelName,
		log:    log.With().Str("component", "judge").Logger(),
	}, nil
}

func (j *Judge) Close() error {
	return j.client.Close()
}

// Evaluate scores one question and answer pair.
func (j *Judge) Evaluate(ctx context.Context, query, answer string) (Verdict, error) {
	model := j.client.GenerativeModel(j.model)
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(1000)

	prompt := judgeSystem + "\n\n" + fmt.Sprintf(judgeRubric, query, answer)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Verdict{}, fmt.Errorf("judge generation: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Verdict{}, errors.New("judge returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	verdict, err := ParseVerdict(sb.String())
	if err != nil {
		j.log.Warn().Err(err).Str("reply", truncate(sb.String(), 100)).Msg("judge verdict unparseable")
		return Verdict{}, err
	}

	j.log.Debug().
		Int("accuracy", verdict.Accuracy).
		Int("completeness", verdict.Completeness).
		Float64("weighted", verdict.WeightedScore()).
		Msg("judge verdict")
	return verdict, nil
}

// ParseVerdict reads the judge's reply. Replies wrapped in code fences
// or written in lenient JSON still parse; scores outside 0-10 are
// rejected.
func ParseVerdict(reply string) (Verdict, error) {
	var v Verdict
	if _, err := utils.SmartParse(utils.CleanMarkdown(reply), &v); err != nil {
		return Verdict{}, fmt.Errorf("parse judge verdict: %w", err)
	}

	for _, score := range []int{v.Accuracy, v.Completeness, v.Clarity, v.Sourcing, v.Insight} {
		if score < 0 || score > 10 {
			return Verdict{}, fmt.Errorf("judge score %d out of range", score)
		}
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
