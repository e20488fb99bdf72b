package psychologist

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"psybot/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	if err := logger.Init(true); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func completionWith(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: text}},
		},
	}
}

func TestGenerator_Reply(t *testing.T) {
	mockClient := new(MockCompleter)
	mockClient.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-3.5-turbo" &&
			req.MaxTokens == 500 &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			strings.Contains(req.Messages[1].Content, "Сегодня был трудный день")
	})).Return(completionWith("  Расскажите, что именно было трудным?  "), nil)

	g := NewGenerator(mockClient, "gpt-3.5-turbo", 500, 0.7)

	reply := g.Reply(context.Background(), "Сегодня был трудный день")
	assert.Equal(t, "Расскажите, что именно было трудным?", reply)

	mockClient.AssertNumberOfCalls(t, "CreateChatCompletion", 1)
}

func TestGenerator_FallbackOnError(t *testing.T) {
	mockClient := new(MockCompleter)
	mockClient.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("provider unreachable"))

	g := NewGenerator(mockClient, "gpt-3.5-turbo", 500, 0.7)

	// Deterministic fallback path: two identical failures yield the same
	// fixed string both times.
	first := g.Reply(context.Background(), "Сегодня был трудный день")
	second := g.Reply(context.Background(), "Сегодня был трудный день")

	assert.Equal(t, Fallback, first)
	assert.Equal(t, first, second)
}

func TestGenerator_FallbackOnEmptyChoices(t *testing.T) {
	mockClient := new(MockCompleter)
	mockClient.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	g := NewGenerator(mockClient, "gpt-3.5-turbo", 500, 0.7)

	assert.Equal(t, Fallback, g.Reply(context.Background(), "привет"))
}

func TestGenerator_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	mockClient := new(MockCompleter)
	mockClient.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("provider unreachable"))

	g := NewGenerator(mockClient, "gpt-3.5-turbo", 500, 0.7)

	for i := 0; i < 10; i++ {
		assert.Equal(t, Fallback, g.Reply(context.Background(), "привет"))
	}

	// Breaker trips at 5 consecutive failures; later calls fail fast
	// without reaching the provider.
	mockClient.AssertNumberOfCalls(t, "CreateChatCompletion", 5)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("мне тревожно")

	assert.Contains(t, prompt, "Пациент: мне тревожно")
	assert.Contains(t, prompt, "Не давай медицинских диагнозов")
}
