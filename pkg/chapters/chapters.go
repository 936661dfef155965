package chapters

import (
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	openai "github.com/sashabaranov/go-openai"
)

// Config drives the LLM call that produces chapter timestamps.
type Config struct {
	// Model is the LLM model identifier, e.g. "gpt-4o-mini".
	Model string `toml:"model"`
	// APIKey is the LLM API key. Leave empty to read it from the
	// environment variable named by APIKeyEnv instead.
	APIKey string `toml:"api_key"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`
	// PromptFile is the chapter-generation prompt prepended to the
	// transcript.
	PromptFile string `toml:"prompt_file"`
	// Languages is the transcript language preference order.
	Languages []string `toml:"languages"`
}

// completionClient is the slice of the OpenAI client the generator uses.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// transcriptProvider fetches a formatted transcript for a video.
type transcriptProvider interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Generator produces chapter timestamp text for a video: transcript fetch,
// prompt assembly, one chat completion.
type Generator struct {
	transcripts transcriptProvider
	client      completionClient
	model       string
	promptFile  string
}

func NewGenerator(cfg Config) (*Generator, error) {
	key := cfg.APIKey
	if key == "" && cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" {
		return nil, errors.New("no LLM API key configured")
	}

	if cfg.Model == "" {
		return nil, errors.New("no LLM model configured")
	}

	return &Generator{
		transcripts: NewTranscriptClient(cfg.Languages),
		client:      openai.NewClient(key),
		model:       cfg.Model,
		promptFile:  cfg.PromptFile,
	}, nil
}

// Timestamps returns generated chapter text for the video, ready to append to
// an episode description.
func (g *Generator) Timestamps(ctx context.Context, videoID string) (string, error) {
	log.Infof("getting transcript for: %s", videoID)

	transcript, err := g.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return "", err
	}

	prompt, err := os.ReadFile(g.promptFile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read prompt file: %s", g.promptFile)
	}

	log.Infof("creating chapters using: %s", g.model)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: string(prompt) + transcript,
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return "\nTimestamps:\n" + resp.Choices[0].Message.Content, nil
}
