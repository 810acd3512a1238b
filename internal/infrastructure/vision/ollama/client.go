// Package ollama implements the food recognition adapter on top of an
// Ollama-compatible multimodal model endpoint.
package ollama

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

func WithResilienceExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func New(baseURL, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recognize sends the photo with the fixed instruction prompt and normalizes
// the model output into recognized items. A transport-level failure comes
// back as an error; a response that cannot be parsed into items comes back
// as an unsuccessful result with the synthetic placeholder item.
func (c *Client) Recognize(ctx context.Context, image []byte) (domain.RecognitionResult, error) {
	request := map[string]any{
		"model":  c.model,
		"prompt": recognitionPrompt,
		"images": []string{base64.StdEncoding.EncodeToString(image)},
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", request, &response, "recognize")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "vision.recognize", call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.RecognitionResult{}, wrapTemporaryIfNeeded("vision recognize", err)
	}

	return ParseRecognitionResponse(response.Response), nil
}
