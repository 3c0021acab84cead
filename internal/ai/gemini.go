package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"concierge/internal/modules/dialogue"
)

// GeminiProvider implements Provider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash for low latency; slot extraction runs on every turn.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Low temperature: extraction should be literal, not creative.
	model.SetTemperature(0.1)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// ExtractSlot analyzes one utterance for the current dialogue step.
func (p *GeminiProvider) ExtractSlot(ctx context.Context, transcript string, step dialogue.Step, locations []string, current dialogue.RideSlots) (*SlotResult, error) {
	systemPrompt := buildSystemPrompt(step, locations, current)
	fullPrompt := fmt.Sprintf("%s\n\nGuest utterance: %s", systemPrompt, transcript)

	resp, err := p.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// Clean up potential markdown formatting (JSON mode should handle this,
	// safety first).
	cleanJSON := cleanJSONString(responseText.String())

	var result SlotResult
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}

	return &result, nil
}

// buildSystemPrompt constructs the per-step extraction instructions.
func buildSystemPrompt(step dialogue.Step, locations []string, current dialogue.RideSlots) string {
	known := "NONE"
	if len(locations) > 0 {
		known = strings.Join(locations, ", ")
	}
	pickup := current.Pickup
	if pickup == "" {
		pickup = "UNKNOWN"
	}
	destination := current.Destination
	if destination == "" {
		destination = "UNKNOWN"
	}

	var task string
	switch step {
	case dialogue.StepAskingPickup:
		task = `TASK: Extract the PICKUP place name the guest wants to be picked up at.
- The guest speaks Vietnamese or English.
- Keywords "từ", "ở", "tại", "from", "at" introduce the pickup.
- If the utterance names both a pickup and a destination ("từ X đến Y"),
  return the PICKUP (X) only.
- Prefer names from the known-location list, but return whatever the guest
  said if it is not on the list.
- If a passenger count is mentioned too, return it in "guest_count".
- If no place was mentioned at all, set "place": null.`
	case dialogue.StepAskingDest:
		task = `TASK: Extract the DESTINATION place name the guest wants to go to.
- The guest speaks Vietnamese or English.
- Keywords "đến", "tới", "đi", "to", "go to" introduce the destination.
- If the utterance names both ("từ X đến Y"), return the DESTINATION (Y) only.
- Do NOT return the already-confirmed pickup as the destination.
- If a passenger count is mentioned too, return it in "guest_count".
- If no place was mentioned at all, set "place": null.`
	case dialogue.StepAskingGuestCount:
		task = `TASK: Extract the number of passengers.
- The guest speaks Vietnamese or English; digits and number words both count
  ("3 người", "năm khách", "mười người", "two people").
- Return the exact number heard in "guest_count", even if it is large;
  range checks happen downstream.
- If no number was mentioned, set "guest_count": 0.
- If the guest also leaves a note for the driver in the same breath, set
  "has_notes": true and "notes" accordingly.`
	case dialogue.StepAskingNotes:
		task = `TASK: Decide whether the guest left a note for the driver.
- Declines like "không", "không có", "thôi khỏi", "no", "nothing" mean NO
  note: set "has_notes": false and "notes": "".
- Anything else is a note: set "has_notes": true and put the cleaned note
  text (guest's own words, original language) in "notes".`
	default:
		task = `TASK: Extract whatever booking information the utterance contains.`
	}

	return fmt.Sprintf(`Role: You are the slot-extraction core for a hotel guest-services voice
assistant. Guests book on-property shuttle rides by voice.
Context:
- Known hotel locations: %s
- Confirmed pickup: %s
- Confirmed destination: %s

%s

Output JSON Schema (no other fields, no commentary):
{
  "place": "string or null",
  "guest_count": integer (default 0),
  "has_notes": boolean (default false),
  "notes": "string (default \"\")"
}`, known, pickup, destination, task)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
