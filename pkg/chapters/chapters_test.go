package chapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openai "github.com/sashabaranov/go-openai"
)

type fakeTranscripts struct {
	text string
}

func (f *fakeTranscripts) Fetch(ctx context.Context, videoID string) (string, error) {
	return f.text, nil
}

type fakeCompletions struct {
	request openai.ChatCompletionRequest
	content string
}

func (f *fakeCompletions) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.request = request
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestTimestamps(t *testing.T) {
	promptFile := filepath.Join(t.TempDir(), "chapters_prompt.txt")
	require.NoError(t, os.WriteFile(promptFile, []byte("Make chapters:\n"), 0644))

	completions := &fakeCompletions{content: "00:00:00 Intro\n00:05:00 Main"}
	g := &Generator{
		transcripts: &fakeTranscripts{text: "00:00:00\nhello\n"},
		client:      completions,
		model:       "gpt-4o-mini",
		promptFile:  promptFile,
	}

	out, err := g.Timestamps(context.Background(), "V1")
	require.NoError(t, err)

	assert.Equal(t, "\nTimestamps:\n00:00:00 Intro\n00:05:00 Main", out)
	assert.Equal(t, "gpt-4o-mini", completions.request.Model)
	require.Len(t, completions.request.Messages, 1)
	assert.Equal(t, "Make chapters:\n00:00:00\nhello\n", completions.request.Messages[0].Content)
}

func TestNewGenerator_NoKey(t *testing.T) {
	_, err := NewGenerator(Config{Model: "gpt-4o-mini", APIKeyEnv: "GDRIVECAST_TEST_MISSING_KEY"})
	assert.Error(t, err)
}

func TestNewGenerator_KeyFromEnv(t *testing.T) {
	t.Setenv("GDRIVECAST_TEST_KEY", "sk-test")

	g, err := NewGenerator(Config{Model: "gpt-4o-mini", APIKeyEnv: "GDRIVECAST_TEST_KEY", PromptFile: "chapters_prompt.txt"})
	require.NoError(t, err)
	assert.NotNil(t, g)
}
