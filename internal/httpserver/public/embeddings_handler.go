package public

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nferro/embeddingd/internal/app"
	"github.com/nferro/embeddingd/internal/embedder"
	"github.com/nferro/embeddingd/internal/httpserver/httputil"
	"github.com/nferro/embeddingd/internal/models"
	"github.com/nferro/embeddingd/internal/tokencount"
)

type embeddingsHandler struct {
	container *app.Container
}

type openAIEmbeddingRequest struct {
	// Model is accepted for wire compatibility but ignored: this
	// service always answers with the model it has loaded.
	Model string          `json:"model"`
	Input json.RawMessage `json:"input"`
}

type openAIEmbedding struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
	Object    string    `json:"object"`
}

type openAIUsage struct {
	PromptTokens int32 `json:"prompt_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

type openAIEmbeddingResponse struct {
	Object string            `json:"object"`
	Model  string            `json:"model"`
	Data   []openAIEmbedding `json:"data"`
	Usage  openAIUsage       `json:"usage"`
}

func (h *embeddingsHandler) createEmbeddings(c *fiber.Ctx) error {
	var req openAIEmbeddingRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}

	inputs, err := normalizeInput(req.Input, h.container.Config.Model.MaxBatch)
	if err != nil {
		return httputil.WriteFieldError(c, fiber.StatusBadRequest, "input", err.Error())
	}

	ctx := c.UserContext()
	modelID := h.container.Model.ModelID()

	start := time.Now()
	vectors, err := h.container.Model.Embed(ctx, inputs)
	elapsed := time.Since(start)
	if err != nil {
		status := statusForEmbedError(err)
		h.container.Observability.RecordEmbedding(modelID, status, 0, 0, elapsed)
		if status >= fiber.StatusInternalServerError {
			slog.Error("embedding request failed",
				"error", err,
				"inputs", len(inputs),
				"status", status)
		}
		return httputil.WriteError(c, status, embedErrorMessage(err))
	}

	resp := assembleResponse(modelID, inputs, vectors)
	h.container.Observability.RecordEmbedding(modelID, fiber.StatusOK, len(inputs), int64(resp.Usage.PromptTokens), elapsed)

	return c.JSON(convertEmbeddingResponse(resp))
}

// normalizeInput flattens the wire-level `input` field, which may be a
// single string or an array of strings, into an ordered batch of
// non-empty texts.
func normalizeInput(raw json.RawMessage, maxBatch int) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("input is required")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		single = strings.TrimSpace(single)
		if single == "" {
			return nil, errors.New("input must not be empty")
		}
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, errors.New("input must be a string or an array of strings")
	}
	if len(many) == 0 {
		return nil, errors.New("input array must contain at least one text")
	}
	if maxBatch > 0 && len(many) > maxBatch {
		return nil, fmt.Errorf("input array exceeds the maximum of %d texts", maxBatch)
	}

	out := make([]string, len(many))
	for i, text := range many {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("input[%d] must not be empty", i)
		}
		out[i] = text
	}
	return out, nil
}

// assembleResponse zips vectors, positions and token counts into the
// internal response. data[i].Index always equals i, and usage sums the
// per-input token counts.
func assembleResponse(modelID string, inputs []string, vectors [][]float32) models.EmbeddingsResponse {
	embeddings := make([]models.Embedding, len(vectors))
	for i, vector := range vectors {
		embeddings[i] = models.Embedding{Index: i, Vector: vector}
	}

	promptTokens := tokencount.Total(inputs)
	return models.EmbeddingsResponse{
		Model:      modelID,
		Embeddings: embeddings,
		Usage: models.Usage{
			PromptTokens: promptTokens,
			TotalTokens:  promptTokens,
		},
	}
}

func convertEmbeddingResponse(resp models.EmbeddingsResponse) openAIEmbeddingResponse {
	data := make([]openAIEmbedding, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		data = append(data, openAIEmbedding{
			Index:     emb.Index,
			Embedding: emb.Vector,
			Object:    "embedding",
		})
	}

	return openAIEmbeddingResponse{
		Object: "list",
		Model:  resp.Model,
		Data:   data,
		Usage: openAIUsage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
}

func statusForEmbedError(err error) int {
	switch {
	case errors.Is(err, embedder.ErrNotReady):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, embedder.ErrTimeout):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func embedErrorMessage(err error) string {
	switch {
	case errors.Is(err, embedder.ErrNotReady):
		return "model is still loading, retry shortly"
	case errors.Is(err, embedder.ErrTimeout):
		return "embedding request timed out"
	default:
		return "embedding failed"
	}
}
