package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relist-app/relist/internal/catalog"
)

func TestParseAnalysis(t *testing.T) {
	text := `{"title": "Oak Writing Desk", "category": "Desk", "subcategory": "writing desk", "color": "brown", "material": "oak", "style": "mission", "condition": "Good", "estimated_price": 145, "confidence": 0.85, "reasoning": "Slatted sides."}`

	a, err := parseAnalysis(text)

	require.NoError(t, err)
	assert.Equal(t, "Oak Writing Desk", a.Title)
	assert.Equal(t, "Desk", a.Category)
	assert.Equal(t, 145.0, a.Price)
	assert.Equal(t, 0.85, a.Confidence)
}

func TestParseAnalysisStripsMarkdownFences(t *testing.T) {
	text := "```json\n{\"title\": \"Gray Sofa\", \"category\": \"Sofa\", \"confidence\": 0.9}\n```"

	a, err := parseAnalysis(text)

	require.NoError(t, err)
	assert.Equal(t, "Gray Sofa", a.Title)
}

func TestParseAnalysisChattyResponse(t *testing.T) {
	text := `Sure! Here is the analysis you asked for:
{"title": "Gray Sofa", "category": "Sofa", "confidence": 0.9}
Let me know if you need anything else.`

	a, err := parseAnalysis(text)

	require.NoError(t, err)
	assert.Equal(t, "Gray Sofa", a.Title)
}

func TestParseAnalysisClampsConfidence(t *testing.T) {
	a, err := parseAnalysis(`{"title": "Sofa", "confidence": 1.7}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.Confidence)

	b, err := parseAnalysis(`{"title": "Sofa", "confidence": -0.2}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.Confidence)
}

func TestParseAnalysisMalformed(t *testing.T) {
	for _, text := range []string{
		"I cannot identify this item.",
		`{"title": "broken`,
		"",
	} {
		_, err := parseAnalysis(text)
		require.Error(t, err, "input %q", text)

		var malformed *catalog.MalformedResponseError
		assert.True(t, errors.As(err, &malformed), "input %q should yield MalformedResponseError", text)
	}
}

func TestParseHolistic(t *testing.T) {
	text := `{"items": [
		{"image_id": "img_01", "title": "Gray Sofa", "category": "Sofa", "confidence": 0.9},
		{"image_id": "img_02", "title": "Gray Sofa Side", "category": "Sofa", "confidence": 0.8}
	], "groups": [["img_01", "img_02"]]}`

	res, err := parseHolistic(text)

	require.NoError(t, err)
	require.Len(t, res.Analyses, 2)
	assert.Equal(t, "img_01", res.Analyses[0].ImageID)
	assert.Equal(t, [][]string{{"img_01", "img_02"}}, res.Groups)
}

func TestParseHolisticNoItems(t *testing.T) {
	_, err := parseHolistic(`{"items": [], "groups": []}`)
	require.Error(t, err)

	var malformed *catalog.MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
}

func TestExtractJSONObject(t *testing.T) {
	got, err := extractJSONObject("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)

	_, err = extractJSONObject("no json here")
	assert.Error(t, err)
}
