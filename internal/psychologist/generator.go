package psychologist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"psybot/pkg/logger"
	"psybot/pkg/resilience"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "Ты - опытный психолог, оказывающий профессиональную поддержку."

const promptTemplate = `Ты - дипломированный психолог с 15-летним опытом работы. Твоя задача - оказывать профессиональную психологическую поддержку.

Пациент: %s

Твой ответ должен быть:
1. Профессиональным и этичным
2. Поддерживающим и эмпатичным
3. Основанным на принципах доказательной психологии
4. Конкретным и практичным
5. В формате терапевтического диалога

Не давай медицинских диагнозов и не заменяй очную консультацию. Сосредоточься на активном слушании и поддержке.

Ответ психолога:`

// Fallback is the one reply the user sees for any completion failure.
const Fallback = "Благодарю вас за доверие. Я внимательно вас выслушал и хочу отметить, что обращение за помощью - это важный шаг. Давайте вместе подумаем, как мы можем работать с этой ситуацией. Что вы чувствуете в данный момент?"

// ChatCompleter is the slice of the OpenAI client the generator needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator builds the persona-framed completion request and maps every
// provider failure to the fixed fallback string.
type Generator struct {
	client      ChatCompleter
	model       string
	maxTokens   int
	temperature float32
	breaker     *resilience.CircuitBreaker
	limiter     *resilience.RateLimiter
}

func NewGenerator(client ChatCompleter, model string, maxTokens int, temperature float64) *Generator {
	return &Generator{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		breaker:     resilience.NewCircuitBreaker(5, 30*time.Second),
		limiter:     resilience.NewRateLimiter(20, time.Second),
	}
}

// BuildPrompt interpolates the user's message into the fixed persona
// template.
func BuildPrompt(userMessage string) string {
	return fmt.Sprintf(promptTemplate, userMessage)
}

// Reply returns the completion text, or Fallback on any failure. It
// never returns an error: generation failures must not reach the user
// as anything but the fallback.
func (g *Generator) Reply(ctx context.Context, userText string) string {
	var resp openai.ChatCompletionResponse

	err := g.breaker.Execute(func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		var reqErr error
		resp, reqErr = g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: BuildPrompt(userText),
				},
			},
			MaxTokens:   g.maxTokens,
			Temperature: g.temperature,
		})
		return reqErr
	})
	if err != nil {
		logger.Error("Completion request failed", zap.Error(err))
		return Fallback
	}

	if len(resp.Choices) == 0 {
		logger.Warn("Completion returned no choices")
		return Fallback
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Fallback
	}

	return text
}
