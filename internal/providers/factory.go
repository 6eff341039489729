package providers

import (
	"fmt"
	"os"

	"github.com/oryxcli/oryx/internal/loop"
)

// compatDefaults lists OpenAI-compatible providers keyed by name: the
// default base URL and model when the environment does not override
// them.
var compatDefaults = map[string]struct {
	baseURL string
	model   string
	keyVar  string
}{
	"deepseek": {"https://api.deepseek.com/v1", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"groq":     {"https://api.groq.com/openai/v1", "llama-3.1-70b-versatile", "GROQ_API_KEY"},
	"ollama":   {"http://localhost:11434/v1", "llama3.1", "OLLAMA_API_KEY"},
	"lmstudio": {"http://localhost:1234/v1", "local-model", "LMSTUDIO_API_KEY"},
}

// NewClient builds a model client for the named provider. apiKey,
// model, and baseURL override the provider defaults when non-empty.
func NewClient(provider, apiKey, model, baseURL string) (loop.ModelClient, error) {
	switch provider {
	case "anthropic":
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an api key")
		}
		if model == "" {
			model = "claude-3-5-sonnet-20241022"
		}
		return NewAnthropicClient(apiKey, model), nil

	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAIClient(apiKey, model, baseURL), nil

	default:
		def, ok := compatDefaults[provider]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", provider)
		}
		if apiKey == "" {
			// Local servers accept any key; hosted compat providers don't.
			apiKey = os.Getenv(def.keyVar)
			if apiKey == "" && (provider == "ollama" || provider == "lmstudio") {
				apiKey = provider
			}
			if apiKey == "" {
				return nil, fmt.Errorf("%s not set", def.keyVar)
			}
		}
		if model == "" {
			model = def.model
		}
		if baseURL == "" {
			baseURL = def.baseURL
		}
		return NewOpenAIClient(apiKey, model, baseURL), nil
	}
}
