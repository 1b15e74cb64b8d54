package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kirillkom/destination-organizer/internal/core/classification"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/resilience"
)

const (
	operationMessages = "anthropic.messages"
	defaultMaxTokens  = 2048
)

// Classifier sends the destination prompt to the Anthropic Messages API and
// returns the first text block of the reply.
type Classifier struct {
	client   anthropic.Client
	model    string
	executor *resilience.Executor
}

// New builds a classifier. SDK retries are disabled so the executor owns the
// retry and breaker policy.
func New(apiKey, model string, executor *resilience.Executor, opts ...option.RequestOption) *Classifier {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &Classifier{
		client:   anthropic.NewClient(append(base, opts...)...),
		model:    model,
		executor: executor,
	}
}

func (c *Classifier) Classify(ctx context.Context, text, documentName string) (string, error) {
	prompt := classification.BuildPrompt(text, documentName)

	var message *anthropic.Message
	err := c.executor.Execute(ctx, operationMessages, func(callCtx context.Context) error {
		var callErr error
		message, callErr = c.client.Messages.New(callCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: defaultMaxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		return callErr
	}, classifyAnthropicError)
	if err != nil {
		return "", resilience.WrapTemporary(operationMessages, err, classifyAnthropicError)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			slog.Debug("anthropic_response",
				"document", documentName,
				"size", len(block.Text),
				"tokens_in", message.Usage.InputTokens,
				"tokens_out", message.Usage.OutputTokens,
			)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in anthropic response")
}

func classifyAnthropicError(err error) resilience.ErrorClassification {
	return resilience.Classify(err, func(err error) (resilience.ErrorClassification, bool) {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return resilience.ClassifyStatus(apiErr.StatusCode), true
		}
		return resilience.ErrorClassification{}, false
	})
}
