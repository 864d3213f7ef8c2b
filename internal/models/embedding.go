package models

// Embedding pairs one input's position in the request batch with its
// vector. Index always equals the position of the text in the normalized
// input slice.
type Embedding struct {
	Index  int       `json:"index"`
	Vector []float32 `json:"vector"`
}

type Usage struct {
	PromptTokens int32 `json:"prompt_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

type EmbeddingsResponse struct {
	Model      string      `json:"model"`
	Embeddings []Embedding `json:"data"`
	Usage      Usage       `json:"usage"`
}
