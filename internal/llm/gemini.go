package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/relist-app/relist/internal/catalog"
)

const (
	geminiModel     = "gemini-3-flash-preview"
	geminiLiteModel = "gemini-2.5-flash-lite"
)

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion      = 0.50
	geminiOutputPricePerMillion     = 3.00
	geminiLiteInputPricePerMillion  = 0.075
	geminiLiteOutputPricePerMillion = 0.30
)

const singleImagePrompt = `Analyze this photo of a furniture piece for a secondhand marketplace listing.

Respond in JSON format with these fields:
- title: A short, descriptive marketplace title, e.g. "Mid-Century Modern Walnut Desk"
- category: The furniture category (Chair, Table, Sofa, Bed, Desk, Cabinet, Bookshelf, Dresser, ...)
- subcategory: A more specific type if identifiable (e.g. "writing desk", "loveseat"), empty string if not
- color: The dominant color or finish
- material: The primary material (wood, metal, fabric, leather, ...)
- style: The design style (modern, traditional, rustic, industrial, mission, ...)
- condition: One of: New, Excellent, Good, Fair, Poor
- estimated_price: A fair asking price in USD as a number
- confidence: Your confidence in this analysis from 0.0 to 1.0
- reasoning: One sentence on what you based the identification on

Example response:
{"title": "Mission Style Oak Writing Desk", "category": "Desk", "subcategory": "writing desk", "color": "brown", "material": "oak", "style": "mission", "condition": "Good", "estimated_price": 145, "confidence": 0.85, "reasoning": "Slatted sides and straight lines typical of mission furniture, visible wear on the desktop."}

Respond ONLY with the JSON object, no markdown or other text.`

const batchPrompt = `Analyze these photos of furniture for secondhand marketplace listings. The photos may show several distinct pieces, and one piece may appear in several photos from different angles.

Each photo is preceded by a line "Image ID: <id>". Use those exact IDs in your response.

Respond in JSON format with two fields:
- items: an array with one analysis object per photo, each containing:
  image_id, title, category, subcategory, color, material, style, condition (New/Excellent/Good/Fair/Poor), estimated_price (USD number), confidence (0.0-1.0), reasoning
- groups: an array of arrays of image IDs, where each inner array lists all photos showing the same physical piece. Every image ID must appear in exactly one group.

Be aggressive when grouping: photos of the same piece from different angles, distances or lighting belong together. A duplicate listing for one piece is worse than two pieces sharing a listing.

Example response:
{"items": [{"image_id": "a1", "title": "Gray Fabric Sectional Sofa", "category": "Sofa", "subcategory": "sectional", "color": "gray", "material": "fabric", "style": "modern", "condition": "Good", "estimated_price": 350, "confidence": 0.9, "reasoning": "L-shaped sectional with chaise, light wear on cushions."}], "groups": [["a1", "a2"], ["b1"]]}

Respond ONLY with the JSON object, no markdown or other text.`

// GeminiAnalyzer implements catalog.Analyzer using Google's Gemini API.
type GeminiAnalyzer struct {
	client *genai.Client
}

// NewGeminiAnalyzer creates a new Gemini-based analyzer with the given API key.
func NewGeminiAnalyzer(ctx context.Context, apiKey string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiAnalyzer{client: client}, nil
}

// AnalyzeImage analyzes a single furniture photo.
func (g *GeminiAnalyzer) AnalyzeImage(ctx context.Context, img catalog.SourceImage) (*catalog.ImageAnalysis, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(dedent.Dedent(singleImagePrompt)),
		{InlineData: &genai.Blob{Data: img.Data, MIMEType: "image/jpeg"}},
	}

	text, err := g.generate(ctx, geminiModel, parts, 1)
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		return nil, err
	}
	analysis.ImageID = img.ID
	return analysis, nil
}

// AnalyzeAndGroup analyzes a whole batch in one call and has the model
// propose which photos show the same piece.
func (g *GeminiAnalyzer) AnalyzeAndGroup(ctx context.Context, imgs []catalog.SourceImage) (*catalog.HolisticResult, error) {
	if len(imgs) == 0 {
		return nil, fmt.Errorf("no images provided")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(dedent.Dedent(batchPrompt)),
	}
	for _, img := range imgs {
		parts = append(parts,
			genai.NewPartFromText(fmt.Sprintf("Image ID: %s", img.ID)),
			&genai.Part{InlineData: &genai.Blob{Data: img.Data, MIMEType: "image/jpeg"}},
		)
	}

	text, err := g.generate(ctx, geminiModel, parts, len(imgs))
	if err != nil {
		return nil, err
	}

	return parseHolistic(text)
}

// generate executes the Gemini call and returns the response text. API-level
// failures are wrapped as transient so the caller can retry or fall back.
func (g *GeminiAnalyzer) generate(ctx context.Context, model string, parts []*genai.Part, imageCount int) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", &catalog.TransientError{Err: fmt.Errorf("failed to generate content: %w", err)}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", &catalog.TransientError{Err: fmt.Errorf("no response from Gemini")}
	}

	text := result.Text()

	if result.UsageMetadata != nil {
		inputTokens := int64(result.UsageMetadata.PromptTokenCount)
		outputTokens := int64(result.UsageMetadata.CandidatesTokenCount)
		log.Info().
			Str("model", model).
			Int("imageCount", imageCount).
			Int64("inputTokens", inputTokens).
			Int64("outputTokens", outputTokens).
			Float64("costUSD", calculateGeminiCost(inputTokens, outputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)).
			Msg("vision llm call")
	}

	return text, nil
}

const priceSearchQueryPrompt = `Generate an optimized search query to find similar furniture for price comparison on a marketplace.

Title: %s

Extract the core identifier that would match similar pieces: type and key characteristics (e.g. "leather sofa", "oak writing desk").

Do NOT include:
- Condition descriptors (e.g. "used", "like new", "good condition")
- Marketing terms (e.g. "beautiful", "stunning", "must see")

Respond with ONLY the search query (1-5 words), no quotes or explanation.`

// GeneratePriceSearchQuery distills a listing title into a short comparison
// search query using the lite model. Returns "" when the model produced
// nothing usable, which callers treat as "search with the raw title".
func (g *GeminiAnalyzer) GeneratePriceSearchQuery(ctx context.Context, title string) (string, error) {
	prompt := fmt.Sprintf(dedent.Dedent(priceSearchQueryPrompt), title)

	result, err := g.client.Models.GenerateContent(ctx, geminiLiteModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini price search query failed: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	query := strings.TrimSpace(result.Text())
	query = strings.TrimPrefix(query, "```text")
	query = strings.TrimPrefix(query, "```")
	query = strings.TrimSuffix(query, "```")
	query = strings.TrimSpace(query)
	query = strings.Trim(query, `"'`)

	// A long answer is likely a refusal or explanation, not a query.
	if len(query) > 50 {
		return "", nil
	}

	if result.UsageMetadata != nil {
		cost := calculateGeminiCost(
			int64(result.UsageMetadata.PromptTokenCount),
			int64(result.UsageMetadata.CandidatesTokenCount),
			geminiLiteInputPricePerMillion,
			geminiLiteOutputPricePerMillion,
		)
		log.Info().
			Str("model", geminiLiteModel).
			Float64("costUSD", cost).
			Str("title", title).
			Str("query", query).
			Msg("price search query llm call")
	}

	return query, nil
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}

// rawAnalysis is the wire shape of one analysis in the model's response.
type rawAnalysis struct {
	ImageID        string  `json:"image_id"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	Subcategory    string  `json:"subcategory"`
	Color          string  `json:"color"`
	Material       string  `json:"material"`
	Style          string  `json:"style"`
	Condition      string  `json:"condition"`
	EstimatedPrice float64 `json:"estimated_price"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

func (r *rawAnalysis) toAnalysis() catalog.ImageAnalysis {
	return catalog.ImageAnalysis{
		ImageID:     r.ImageID,
		Title:       r.Title,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Color:       r.Color,
		Material:    r.Material,
		Style:       r.Style,
		Condition:   r.Condition,
		Price:       r.EstimatedPrice,
		Confidence:  clampConfidence(r.Confidence),
		Reasoning:   r.Reasoning,
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func parseAnalysis(text string) (*catalog.ImageAnalysis, error) {
	jsonText, err := extractJSONObject(text)
	if err != nil {
		return nil, &catalog.MalformedResponseError{Response: text, Err: err}
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, &catalog.MalformedResponseError{Response: text, Err: fmt.Errorf("failed to parse response JSON: %w", err)}
	}

	a := raw.toAnalysis()
	return &a, nil
}

func parseHolistic(text string) (*catalog.HolisticResult, error) {
	jsonText, err := extractJSONObject(text)
	if err != nil {
		return nil, &catalog.MalformedResponseError{Response: text, Err: err}
	}

	var raw struct {
		Items  []rawAnalysis `json:"items"`
		Groups [][]string    `json:"groups"`
	}
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, &catalog.MalformedResponseError{Response: text, Err: fmt.Errorf("failed to parse response JSON: %w", err)}
	}
	if len(raw.Items) == 0 {
		return nil, &catalog.MalformedResponseError{Response: text, Err: fmt.Errorf("response contains no items")}
	}

	res := &catalog.HolisticResult{Groups: raw.Groups}
	for _, item := range raw.Items {
		res.Analyses = append(res.Analyses, item.toAnalysis())
	}
	return res, nil
}

// extractJSONObject strips markdown code fences and surrounding chatter,
// returning the outermost {...} in the text.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}
