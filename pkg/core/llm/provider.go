package llm

import (
	"context"
	"strings"
)

// Provider abstracts a chat-completion backend. Implementations read
// their API keys from the environment so the registry can be built
// before any request goes out.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions reshapes system instructions for the target
	// model family before a request goes out.
	AdaptInstructions(rawInstructions string) string
}

// defaultTemperature keeps sampling nearly deterministic. Responses
// quote reported figures, and a paraphrased number is a wrong number.
const defaultTemperature = 0.1

const defaultMaxTokens = 4096

func optString(options map[string]interface{}, key, fallback string) string {
	if v, ok := options[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func optFloat(options map[string]interface{}, key string, fallback float64) float64 {
	if v, ok := options[key].(float64); ok {
		return v
	}
	return fallback
}

// wantsJSON reports whether the caller asked for a JSON response,
// either through an explicit response_format option or by mentioning
// JSON in one of the given prompt texts.
func wantsJSON(options map[string]interface{}, prompts ...string) bool {
	if rf, ok := options["response_format"].(map[string]interface{}); ok {
		return rf["type"] == "json_object"
	}
	for _, p := range prompts {
		if strings.Contains(strings.ToLower(p), "json") {
			return true
		}
	}
	return false
}
