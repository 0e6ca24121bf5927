package summary

import "fmt"

// systemPrompt frames the model as a procurement analyst. Kept short; the
// shape constraints live in the user prompt next to the description.
const systemPrompt = `You are an expert at analyzing government contract opportunities and creating concise, informative summaries for procurement professionals.`

const userPromptTemplate = `Please analyze the following government contract opportunity description and create exactly 5 key bullet points that summarize the most important aspects. Focus on:
1. What the contract is for (main purpose/objective)
2. Key requirements or specifications
3. Important deliverables or outcomes
4. Relevant technical details or constraints
5. Any unique or notable aspects

Format your response as exactly 5 bullet points, each starting with "%s" and ending with a period.

Description to analyze:
%s`

// buildUserPrompt embeds a cleaned description into the fixed 5-bullet
// instruction.
func buildUserPrompt(description string) string {
	return fmt.Sprintf(userPromptTemplate, bulletPrefix, description)
}
