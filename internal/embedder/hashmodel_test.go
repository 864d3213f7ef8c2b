package embedder

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadHashModelBundled(t *testing.T) {
	tests := []struct {
		dimensions int
		modelID    string
	}{
		{dimensions: 384, modelID: "sentence-transformers/all-MiniLM-L6-v2"},
		{dimensions: 768, modelID: "sentence-transformers/all-mpnet-base-v2"},
	}

	for _, tt := range tests {
		model, err := LoadHashModel("", tt.dimensions)
		require.NoError(t, err)
		require.Equal(t, tt.dimensions, model.Dimensions())
		require.Equal(t, tt.modelID, model.ModelID())
		require.Greater(t, model.MaxTokens(), 0)
	}
}

func TestLoadHashModelUnsupportedDimensions(t *testing.T) {
	_, err := LoadHashModel("", 512)
	require.Error(t, err)
}

func TestLoadHashModelFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := `{"version":1,"model_id":"custom/test-model","dimensions":384,"max_tokens":128,"seed":42}`
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0o600))

	model, err := LoadHashModel(path, 384)
	require.NoError(t, err)
	require.Equal(t, "custom/test-model", model.ModelID())
	require.Equal(t, 128, model.MaxTokens())
}

func TestLoadHashModelRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name     string
		artifact string
		wantDims int
	}{
		{name: "dimension mismatch", artifact: `{"version":1,"model_id":"m","dimensions":768,"max_tokens":128,"seed":1}`, wantDims: 384},
		{name: "bad version", artifact: `{"version":2,"model_id":"m","dimensions":384,"max_tokens":128,"seed":1}`, wantDims: 384},
		{name: "missing model id", artifact: `{"version":1,"dimensions":384,"max_tokens":128,"seed":1}`, wantDims: 384},
		{name: "bad dimensions", artifact: `{"version":1,"model_id":"m","dimensions":100,"max_tokens":128,"seed":1}`, wantDims: 0},
		{name: "not json", artifact: `weights`, wantDims: 384},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.artifact), 0o600))
			_, err := LoadHashModel(path, tt.wantDims)
			require.Error(t, err)
		})
	}
}

func TestLoadHashModelMissingFile(t *testing.T) {
	_, err := LoadHashModel(filepath.Join(t.TempDir(), "absent.json"), 384)
	require.Error(t, err)
}

func TestHashModelEmbedShapeAndOrder(t *testing.T) {
	model, err := LoadHashModel("", 384)
	require.NoError(t, err)

	texts := []string{"the quick brown fox", "jumps over", "the lazy dog"}
	vectors, err := model.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for _, vec := range vectors {
		require.Len(t, vec, 384)
	}

	// Vectors track their input, not their position in the batch.
	reversed, err := model.Embed(context.Background(), []string{texts[2], texts[1], texts[0]})
	require.NoError(t, err)
	require.Equal(t, vectors[0], reversed[2])
	require.Equal(t, vectors[2], reversed[0])
}

func TestHashModelDeterministic(t *testing.T) {
	model, err := LoadHashModel("", 384)
	require.NoError(t, err)

	first, err := model.Embed(context.Background(), []string{"hello world"})
	require.NoError(t, err)
	second, err := model.Embed(context.Background(), []string{"hello world"})
	require.NoError(t, err)
	require.Equal(t, first[0], second[0])
}

func TestHashModelVectorsAreUnitLength(t *testing.T) {
	model, err := LoadHashModel("", 768)
	require.NoError(t, err)

	vectors, err := model.Embed(context.Background(), []string{"a short sentence about embeddings"})
	require.NoError(t, err)

	var sum float64
	for _, v := range vectors[0] {
		sum += float64(v) * float64(v)
	}
	require.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestHashModelDistinguishesTexts(t *testing.T) {
	model, err := LoadHashModel("", 384)
	require.NoError(t, err)

	vectors, err := model.Embed(context.Background(), []string{"cats purr softly", "stock markets fell sharply"})
	require.NoError(t, err)
	require.NotEqual(t, vectors[0], vectors[1])
}

func TestHashModelNoFeaturesYieldsZeroVector(t *testing.T) {
	model, err := LoadHashModel("", 384)
	require.NoError(t, err)

	// Punctuation only: nothing countable, nothing to hash.
	vectors, err := model.Embed(context.Background(), []string{"!!! ... ???"})
	require.NoError(t, err)
	for _, v := range vectors[0] {
		require.Zero(t, v)
	}
}
