package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/models"
	"github.com/raine/platescan/internal/stream"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-3-flash-preview"

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.50 // text/image/video
	geminiOutputPricePerMillion = 3.00 // including thinking
)

const geminiPrompt = `You are a nutrition analyst. Analyze the meal in this photo.

Respond in plain text using exactly these labels, each on its own line:

Dish Name: <short name of the dish>
Category: <one of Clearly Healthy, Borderline, Mixed, Clearly Unhealthy>
Confidence: <0-100>
Items Identified: <comma separated foods>
• <one bullet line per visible food item>
Caloric Content: <estimated total kcal with a short explanation>
Calories: <whole number>
Protein: <grams>g
Carbohydrates: <grams>g
Fat: <grams>g
Fiber: <grams>g
Vitamin A: <mcg>mcg
Vitamin C: <mg>mg
Vitamin D: <mcg>mcg
Vitamin E: <mg>mg
Vitamin K: <mcg>mcg
Vitamin B12: <mcg>mcg
Vitamin B1: <mg>mg
Vitamin B2: <mg>mg
Vitamin B3: <mg>mg
Vitamin B6: <mg>mg
Folate: <mcg>mcg
Calcium: <mg>mg
Iron: <mg>mg
Magnesium: <mg>mg
Phosphorus: <mg>mg
Potassium: <mg>mg
Sodium: <mg>mg
Zinc: <mg>mg
Copper: <mg>mg
Manganese: <mg>mg
Selenium: <mcg>mcg
Processing Level: <minimally processed, processed or ultra-processed, with a short reason>
Nutritional Profile: <a few sentences>
Health Implications: <a few sentences>

Leave a blank line between multi-line sections. Do not use markdown.`

const geminiMedicationPrompt = `

The person eating this meal takes the following medications:
%s

After the analysis, add a block for food and medication interactions exactly like this:

MEDICATION_ALERT_START
- <one interaction warning per line>
MEDICATION_ALERT_END

Only list real interactions with the foods in the photo. If there are none, leave the block empty.`

// ContentGenerator is the subset of the genai models service used here.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAnalyzer asks Gemini for the labeled analysis directly, without the
// hosted calculator endpoint.
type GeminiAnalyzer struct {
	gen   ContentGenerator
	model string
}

// NewGeminiAnalyzer creates a new Gemini-based analyzer. An empty model uses
// DefaultGeminiModel.
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewGeminiAnalyzerWithGenerator(client.Models, model), nil
}

func NewGeminiAnalyzerWithGenerator(gen ContentGenerator, model string) *GeminiAnalyzer {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiAnalyzer{gen: gen, model: model}
}

func buildGeminiPrompt(meds []models.Medication) string {
	if len(meds) == 0 {
		return geminiPrompt
	}
	lines := make([]string, 0, len(meds))
	for _, m := range meds {
		line := "- " + m.String()
		if m.Notes != "" {
			line += ": " + m.Notes
		}
		lines = append(lines, line)
	}
	return geminiPrompt + fmt.Sprintf(geminiMedicationPrompt, strings.Join(lines, "\n"))
}

func imageMIMEType(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}

// Transcribe sends the image and prompt to Gemini. The inline alert block of
// the answer is split off into alerts.
func (g *GeminiAnalyzer) Transcribe(ctx context.Context, image []byte, meds []models.Medication) (stream.Transcript, error) {
	if len(image) == 0 {
		return stream.Transcript{}, fmt.Errorf("no image provided")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(buildGeminiPrompt(meds)),
		{InlineData: &genai.Blob{Data: image, MIMEType: imageMIMEType(image)}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.gen.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return stream.Transcript{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return stream.Transcript{}, fmt.Errorf("no response from Gemini")
	}

	event := log.Info().
		Str("model", g.model).
		Int("imageBytes", len(image)).
		Int("medications", len(meds))
	if result.UsageMetadata != nil {
		input := int64(result.UsageMetadata.PromptTokenCount)
		output := int64(result.UsageMetadata.CandidatesTokenCount)
		event = event.
			Int64("inputTokens", input).
			Int64("outputTokens", output).
			Float64("costUSD", calculateGeminiCost(input, output, geminiInputPricePerMillion, geminiOutputPricePerMillion))
	}
	event.Msg("vision llm call")

	return stream.CollectInline(result.Text()), nil
}

func (g *GeminiAnalyzer) AnalyzeImage(ctx context.Context, image []byte, meds []models.Medication) (*analysis.Result, error) {
	return analyze(ctx, g, image, meds)
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
