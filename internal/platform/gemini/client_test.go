package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// fakeIterator replays a fixed list of models.
type fakeIterator struct {
	models []*genai.ModelInfo
	err    error
}

func (f *fakeIterator) Next() (*genai.ModelInfo, error) {
	if len(f.models) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, iterator.Done
	}
	m := f.models[0]
	f.models = f.models[1:]
	return m, nil
}

func TestCollectModels(t *testing.T) {
	it := &fakeIterator{models: []*genai.ModelInfo{
		{Name: "models/gemini-1.5-pro", SupportedGenerationMethods: []string{"generateContent", "countTokens"}},
		{Name: "models/embedding-001", SupportedGenerationMethods: []string{"embedContent"}},
		{Name: "models/gemini-1.5-flash", SupportedGenerationMethods: []string{"generateContent"}},
	}}

	names, err := collectModels(it)
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-1.5-pro", "gemini-1.5-flash"}, names)

	_, err = collectModels(&fakeIterator{err: errors.New("unauthorized")})
	assert.Error(t, err)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"title": `), genai.Text(`"Soup"}`)}},
	}}}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Soup"}`, text)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestIsNotFound(t *testing.T) {
	notFound := &googleapi.Error{Code: http.StatusNotFound, Message: "models/gemini-old is not found"}
	assert.True(t, isNotFound(notFound))
	assert.True(t, isNotFound(fmt.Errorf("generate: %w", notFound)))
	assert.False(t, isNotFound(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.False(t, isNotFound(errors.New("not found")))
}
