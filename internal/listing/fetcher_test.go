package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/MrSnakeDoc/moteur/internal/apperr"
	"github.com/MrSnakeDoc/moteur/internal/catalog"
	"github.com/MrSnakeDoc/moteur/internal/domain"
	"github.com/MrSnakeDoc/moteur/internal/logger"
)

type fakeGenerator struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (g *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	g.model = model
	g.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		g.prompt = contents[0].Parts[0].Text
	}
	if g.err != nil {
		return nil, g.err
	}
	return textResponse(g.reply), nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func newTestFetcher(gen *fakeGenerator) (*Fetcher, *[]string) {
	var keys []string
	factory := func(_ context.Context, apiKey string) (Generator, error) {
		keys = append(keys, apiKey)
		return gen, nil
	}
	f := NewFetcher(factory, catalog.NewHolder(catalog.Default()), logger.NewNop(), Options{})
	return f, &keys
}

func listingsJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"carName":"Dacia Duster %d","price":%d,"year":2021,"mileage":%d,"location":"الرباط","source":"Avito.ma","imageUrl":"https://picsum.photos/400/300?random=%d"}`,
			i, 150000+i*1000, 40000+i*500, i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestFetchReturnsListings(t *testing.T) {
	gen := &fakeGenerator{reply: listingsJSON(10)}
	f, keys := newTestFetcher(gen)

	got, err := f.Fetch(context.Background(), "Dacia Duster 2021", "valid-key")
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, "Dacia Duster 0", got[0].Name)
	assert.Equal(t, domain.SourceAvito, got[0].Source)
	assert.Equal(t, []string{"valid-key"}, *keys)

	assert.Equal(t, DefaultModel, gen.model)
	assert.Contains(t, gen.prompt, `"Dacia Duster 2021"`)
	require.NotNil(t, gen.config)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	require.NotNil(t, gen.config.Temperature)
	assert.InDelta(t, 0.8, *gen.config.Temperature, 1e-6)
	require.NotNil(t, gen.config.ResponseSchema)
	assert.Equal(t, genai.TypeArray, gen.config.ResponseSchema.Type)
}

func TestFetchReusesClientForSameKey(t *testing.T) {
	gen := &fakeGenerator{reply: "[]"}
	f, keys := newTestFetcher(gen)

	for _, key := range []string{"a", "a", "b"} {
		_, err := f.Fetch(context.Background(), "Clio 4", key)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b"}, *keys)
	assert.Equal(t, 3, gen.calls)
}

func TestFetchEmptyAndNonArrayReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"empty text", ""},
		{"whitespace", "  \n "},
		{"empty array", "[]"},
		{"object instead of array", `{"results": []}`},
		{"string literal", `"nothing"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFetcher(&fakeGenerator{reply: tt.reply})
			got, err := f.Fetch(context.Background(), "xyz-unmatchable", "k")
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestFetchParseFailureIsTransient(t *testing.T) {
	f, _ := newTestFetcher(&fakeGenerator{reply: "[{not json"})

	_, err := f.Fetch(context.Background(), "Clio 4", "k")
	require.Error(t, err)
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
}

func TestFetchClassifiesFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"api key message", errors.New("API key not valid. Please pass a valid API key."), apperr.KindCredential},
		{"api_key reason", fmt.Errorf("wrapped: %w", errors.New("reason: API_KEY_INVALID")), apperr.KindCredential},
		{"unauthorized status", genai.APIError{Code: 401, Message: "unauthenticated"}, apperr.KindCredential},
		{"forbidden status pointer", &genai.APIError{Code: 403, Message: "permission denied"}, apperr.KindCredential},
		{"quota", genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"}, apperr.KindTransient},
		{"network", errors.New("dial tcp 1.2.3.4:443: connection refused"), apperr.KindTransient},
		{"cancelled", context.Canceled, apperr.KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFetcher(&fakeGenerator{err: tt.err})
			_, err := f.Fetch(context.Background(), "Clio 4", "k")
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestFetchClientCreationFailure(t *testing.T) {
	factory := func(context.Context, string) (Generator, error) {
		return nil, errors.New("api key is required for Google AI backend")
	}
	f := NewFetcher(factory, catalog.NewHolder(catalog.Default()), logger.NewNop(), Options{})

	_, err := f.Fetch(context.Background(), "Clio 4", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindCredential, apperr.KindOf(err))
}

func TestFetchUsesConfiguredOptions(t *testing.T) {
	gen := &fakeGenerator{reply: "[]"}
	factory := func(context.Context, string) (Generator, error) { return gen, nil }
	f := NewFetcher(factory, catalog.NewHolder(catalog.Default()), logger.NewNop(), Options{
		Model:       "gemini-test",
		Temperature: 0.3,
	})

	_, err := f.Fetch(context.Background(), "Clio 4", "k")
	require.NoError(t, err)
	assert.Equal(t, "gemini-test", gen.model)
	assert.InDelta(t, 0.3, *gen.config.Temperature, 1e-6)
}
