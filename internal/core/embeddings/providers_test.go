package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCohereProvider_Embed(t *testing.T) {
	var got cohereEmbedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer co-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"id":"1","embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer srv.Close()

	p := NewCohereProvider(CohereConfig{APIKey: "co-key", Endpoint: srv.URL, RateLimit: 100})

	res, err := p.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, got.Texts)
	assert.Equal(t, ModelEmbedEnglishV3, got.Model)
	assert.Equal(t, cohereInputType, got.InputType)
	assert.Equal(t, ProviderCohere, res.Provider)
	assert.Equal(t, 2, res.Dimensions)
	assert.Equal(t, []float32{0.3, 0.4}, res.Vectors[1])
}

func TestCohereProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"slow down"}`))
	}))
	defer srv.Close()

	p := NewCohereProvider(CohereConfig{APIKey: "co-key", Endpoint: srv.URL, RateLimit: 100})

	_, err := p.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCohereAPIFailure)
	assert.Contains(t, err.Error(), "slow down")
}

func TestCohereProvider_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","embeddings":[[0.1]]}`))
	}))
	defer srv.Close()

	p := NewCohereProvider(CohereConfig{APIKey: "co-key", Endpoint: srv.URL, RateLimit: 100})

	_, err := p.Embed(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrCohereEmptyResponse)
}

func TestOpenAIProvider_EmbedOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		],"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, RateLimit: 100})
	assert.True(t, p.IsAvailable())
	assert.Equal(t, openaiSmallDimensions, p.Dimensions())

	res, err := p.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, res.Provider)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, res.Vectors)
}

func TestOpenAIProvider_UnavailableWithoutKey(t *testing.T) {
	assert.False(t, NewOpenAIProvider(OpenAIConfig{}).IsAvailable())
	assert.False(t, NewCohereProvider(CohereConfig{}).IsAvailable())

	g, err := NewGoogleProvider(context.Background(), GoogleConfig{})
	require.NoError(t, err)
	assert.False(t, g.IsAvailable())
	assert.Equal(t, 3072, g.Dimensions())
	assert.NoError(t, g.Close())
}
