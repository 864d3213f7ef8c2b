package embedder

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/clipperhouse/uax29/v2/words"
)

// Bundled artifacts for the supported dimension counts. A configured
// model path takes precedence over these.
//
//go:embed artifacts/*.json
var bundledArtifacts embed.FS

var bundledByDimensions = map[int]string{
	384: "artifacts/all-minilm-l6-v2.json",
	768: "artifacts/all-mpnet-base-v2.json",
}

const artifactVersion = 1

// artifact is the on-disk model format: identity, geometry and the
// projection seed that fixes the embedding space.
type artifact struct {
	Version    int    `json:"version"`
	ModelID    string `json:"model_id"`
	Dimensions int    `json:"dimensions"`
	MaxTokens  int    `json:"max_tokens"`
	Seed       uint64 `json:"seed"`
}

func (a artifact) validate() error {
	if a.Version != artifactVersion {
		return fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if strings.TrimSpace(a.ModelID) == "" {
		return fmt.Errorf("artifact model_id is empty")
	}
	if a.Dimensions != 384 && a.Dimensions != 768 {
		return fmt.Errorf("artifact dimensions must be 384 or 768, got %d", a.Dimensions)
	}
	if a.MaxTokens <= 0 {
		return fmt.Errorf("artifact max_tokens must be > 0")
	}
	return nil
}

// HashModel embeds text by signed feature hashing: every word and every
// character trigram of a word is hashed (seeded xxhash) onto one of the
// model's dimensions with sign taken from the hash, and the accumulated
// vector is L2-normalized. The result is a pure function of the input
// text, so identical text yields bit-identical vectors.
type HashModel struct {
	art artifact
}

// LoadHashModel reads and validates a model artifact. When path is empty
// the artifact bundled for wantDimensions is used. A non-empty path must
// agree with wantDimensions or loading fails.
func LoadHashModel(path string, wantDimensions int) (*HashModel, error) {
	var raw []byte
	var err error

	if path != "" {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read model artifact: %w", err)
		}
	} else {
		name, ok := bundledByDimensions[wantDimensions]
		if !ok {
			return nil, fmt.Errorf("no bundled model for %d dimensions", wantDimensions)
		}
		raw, err = bundledArtifacts.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read bundled artifact: %w", err)
		}
	}

	var art artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := art.validate(); err != nil {
		return nil, err
	}
	if wantDimensions != 0 && art.Dimensions != wantDimensions {
		return nil, fmt.Errorf("model artifact has %d dimensions, configuration expects %d", art.Dimensions, wantDimensions)
	}

	return &HashModel{art: art}, nil
}

// Embed generates one vector per text, preserving input order.
func (m *HashModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.embedOne(text)
	}
	return vectors, nil
}

func (m *HashModel) Dimensions() int { return m.art.Dimensions }

func (m *HashModel) ModelID() string { return m.art.ModelID }

func (m *HashModel) MaxTokens() int { return m.art.MaxTokens }

func (m *HashModel) embedOne(text string) []float32 {
	vec := make([]float32, m.art.Dimensions)

	features := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		word := strings.ToLower(tokens.Value())
		if !containsLetterOrDigit(word) {
			continue
		}
		features++
		m.accumulate(vec, "w\x00"+word)
		runes := []rune(word)
		for j := 0; j+3 <= len(runes); j++ {
			m.accumulate(vec, "t\x00"+string(runes[j:j+3]))
		}
	}
	if features == 0 {
		return vec
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		inv := 1 / math.Sqrt(sum)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec
}

func (m *HashModel) accumulate(vec []float32, feature string) {
	d := xxhash.NewWithSeed(m.art.Seed)
	_, _ = d.WriteString(feature)
	h := d.Sum64()

	idx := int(h % uint64(len(vec)))
	if h&(1<<63) != 0 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}

func containsLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
