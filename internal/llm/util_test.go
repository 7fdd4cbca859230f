package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"names\": [\"Nimbus\"]}\n```",
			expected: `{"names": ["Nimbus"]}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"taglines\": []}\n```",
			expected: `{"taglines": []}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON with whitespace",
			input:    "  {\"key\": \"value\"}\n",
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestImage_DataURL(t *testing.T) {
	var nilImage *Image
	assert.Equal(t, "", nilImage.DataURL())
	assert.Equal(t, "", (&Image{MIMEType: "image/png"}).DataURL())

	img := &Image{MIMEType: "image/jpeg", Data: []byte("abc")}
	assert.Equal(t, "data:image/jpeg;base64,YWJj", img.DataURL())

	noMime := &Image{Data: []byte("abc")}
	assert.Equal(t, "data:image/png;base64,YWJj", noMime.DataURL())
}

func TestExtractImageFromResponse(t *testing.T) {
	assert.Nil(t, extractImageFromResponse(nil))

	textOnly := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("sorry, no image")}},
		}},
	}
	assert.Nil(t, extractImageFromResponse(textOnly))

	withImage := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("here you go"),
				genai.Blob{MIMEType: "image/png", Data: []byte{0x89, 0x50}},
			}},
		}},
	}
	img := extractImageFromResponse(withImage)
	if assert.NotNil(t, img) {
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, []byte{0x89, 0x50}, img.Data)
	}
}

func TestExtractTextFromResponse(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
		}},
	}
	text, err := extractTextFromResponse(resp)
	assert.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
}
