package ai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

// ErrEmptyResponse модель вернула пустой текст.
var ErrEmptyResponse = errors.New("openai: empty response")

// JSONClient запрашивает у OpenAI (Responses API) ответ в формате JSON-объекта.
type JSONClient struct {
	client      *openai.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      *zap.SugaredLogger
}

func NewJSONClient(client *openai.Client, model string, maxTokens int64, temperature float64, logger *zap.SugaredLogger) *JSONClient {
	return &JSONClient{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Complete отправляет системное сообщение и сообщение пользователя, требуя response_format=json_object.
func (c *JSONClient) Complete(ctx context.Context, systemText string, userText string) (string, error) {
	if c.client == nil {
		return "", errors.New("nil openai client")
	}

	inputItems := responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(
			responses.ResponseInputMessageContentListParam{
				{OfInputText: &responses.ResponseInputTextParam{Text: systemText}},
			},
			responses.EasyInputMessageRoleSystem,
		),
		responses.ResponseInputItemParamOfMessage(
			responses.ResponseInputMessageContentListParam{
				{OfInputText: &responses.ResponseInputTextParam{Text: userText}},
			},
			responses.EasyInputMessageRoleUser,
		),
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		Input:           responses.ResponseNewParamsInputUnion{OfInputItemList: inputItems},
		MaxOutputTokens: openai.Int(c.maxTokens),
		Temperature:     openai.Float(c.temperature),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
		},
	}

	start := time.Now()
	c.logger.Infow("Generating podcast transcript...", "model", c.model)
	resp, err := c.client.Responses.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("OpenAI request failed", "duration", dur.String(), "error", err)
		return "", err
	}
	c.logger.Infow("OpenAI response received", "duration", dur.String())

	out := resp.OutputText()
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
