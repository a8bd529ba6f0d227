// Package predict builds the model instruction for an enriched event and
// decodes the model's free-form reply into a structured prediction.
package predict

import (
	"encoding/json"

	"llm-event-predictor/internal/types"
)

// systemInstruction pins the response schema. Kept byte-stable so runs
// are comparable across time.
const systemInstruction = "You are a financial assistant. Return ONLY JSON with:\n" +
	"- recommendation (buy/hold/sell)\n" +
	"- confidence (0-1)\n" +
	"- rationale (short)\n" +
	"- action (one sentence)\n" +
	"- features_used (list)\n"

// BuildPrompt serializes an enriched event into the (instruction, payload)
// pair handed to the inference client verbatim.
func BuildPrompt(rec types.EnrichedEvent) (systemMsg, userMsg string) {
	payload, _ := json.MarshalIndent(map[string]types.EnrichedEvent{"data": rec}, "", "  ")
	return systemInstruction, string(payload)
}
