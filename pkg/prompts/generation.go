// Package prompts builds the per-stage prompts for the generation
// pipeline. Every stage asks for a JSON object with a "candidates"
// array so responses parse uniformly.
package prompts

import (
	"encoding/json"
	"fmt"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

const responseFormat = `Respond with ONLY a JSON object of the form {"candidates": [...]} and no other text.`

var systemByStage = map[string]string{
	models.StageBusinessName: `You are a branding expert helping a small business owner name their business.
Generate 5 distinct name candidates. Each candidate is an object with "name" (the proposed name) and "reason" (one sentence on why it fits).
` + responseFormat,

	models.StageTagline: `You are a copywriter crafting taglines for a small business.
Generate 5 tagline candidates. Each candidate is an object with "tagline" (under 10 words) and "tone" (one word describing its voice).
` + responseFormat,

	models.StageBio: `You are writing the public bio for a small business storefront.
Generate 3 bio candidates. Each candidate is an object with "bio" (2-3 sentences, first person plural) and "style" (one word).
` + responseFormat,

	models.StageLogo: `You are an art director describing logo concepts for a small business.
Generate 4 logo concept candidates. Each candidate is an object with "prompt" (a detailed image-generation prompt) and "style" (one word).
` + responseFormat,

	models.StageCampaign: `You are a marketing strategist drafting launch campaigns for a small business.
Generate 3 campaign candidates. Each candidate is an object with "name", "channel" (e.g. instagram, email), and "hook" (the opening line).
` + responseFormat,
}

// Build returns the system and user prompts for a stage. The boolean is
// false for stages the pipeline has no prompt for.
func Build(stage string, inputs map[string]interface{}) (system, user string, ok bool) {
	system, ok = systemByStage[stage]
	if !ok {
		return "", "", false
	}

	inputsJSON, err := json.MarshalIndent(inputs, "", "  ")
	if err != nil || inputs == nil {
		inputsJSON = []byte("{}")
	}

	user = fmt.Sprintf("Here is what the owner has told us about their business so far:\n\n%s\n\nGenerate the candidates.", inputsJSON)
	return system, user, true
}
