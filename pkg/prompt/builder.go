package prompt

import (
	"fmt"
	"strings"

	"documind-be/internal/constant"
	"documind-be/pkg/llm"
)

// Turn is one prior exchange replayed into the answer prompt.
type Turn struct {
	Question string
	Answer   string
}

// ClampDocument cuts text to at most max characters. Byte slicing matches
// the provider-side accounting; a rune split at the boundary costs one
// garbled character at worst, on text that is already being discarded.
func ClampDocument(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max]
}

// BuildSummaryPrompt asks for a plain-text summary, no JSON envelope.
func BuildSummaryPrompt(docText string) string {
	var prompt strings.Builder

	prompt.WriteString("<document>\n")
	prompt.WriteString(ClampDocument(docText, constant.SummaryDocumentLimit))
	prompt.WriteString("\n</document>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString(fmt.Sprintf("Provide a concise summary of the document above in NO MORE THAN %d words.\n", constant.SummaryWordLimit))
	prompt.WriteString("Focus on the main points, key arguments and conclusions.\n")
	prompt.WriteString("Respond with the summary text only. No preamble, no headings.\n")
	prompt.WriteString("</task>")

	return prompt.String()
}

// BuildAnswerMessages assembles the full chat replay for one ask: grounding
// preamble with the document, a priming acknowledgement, prior turns oldest
// first, then the new question with the required JSON shape.
func BuildAnswerMessages(docText string, history []Turn, question string) []llm.Message {
	doc := ClampDocument(docText, constant.AnswerDocumentLimit)
	truncated := len(docText) > constant.AnswerDocumentLimit

	var preamble strings.Builder
	preamble.WriteString("<reference_document>\n")
	preamble.WriteString(doc)
	if truncated {
		preamble.WriteString(constant.DocumentTruncationMarker)
	}
	preamble.WriteString("\n</reference_document>\n\n")

	preamble.WriteString("<task>\n")
	preamble.WriteString("You answer questions about the reference document above.\n")
	preamble.WriteString("CRITICAL: The document is the ONLY data source. Do NOT use outside knowledge.\n")
	preamble.WriteString("If the answer cannot be derived from the document, say so plainly instead of guessing.\n")
	preamble.WriteString("Every answer must carry a justification: a brief reference to the part of the document that supports it, e.g. \"This is stated in the section on pricing\".\n")
	preamble.WriteString("</task>\n\n")

	preamble.WriteString("<output_format>\n")
	preamble.WriteString("Respond with ONLY this JSON object, no other text:\n")
	preamble.WriteString(`{"answer": "<your answer>", "justification": "<supporting reference>"}` + "\n")
	preamble.WriteString("</output_format>")

	messages := []llm.Message{
		{Role: constant.ChatMessageRoleUser, Content: preamble.String()},
		{Role: constant.ChatMessageRoleModel, Content: "Understood. I will answer from the reference document only and respond with the required JSON object."},
	}

	for _, turn := range history {
		messages = append(messages,
			llm.Message{Role: constant.ChatMessageRoleUser, Content: turn.Question},
			llm.Message{Role: constant.ChatMessageRoleModel, Content: turn.Answer},
		)
	}

	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleUser, Content: question})
	return messages
}

// BuildQuizPrompt asks for exactly QuizQuestionCount comprehension questions.
func BuildQuizPrompt(docText string) string {
	var prompt strings.Builder

	prompt.WriteString("<document>\n")
	prompt.WriteString(ClampDocument(docText, constant.ChallengeDocumentLimit))
	prompt.WriteString("\n</document>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString(fmt.Sprintf("Generate EXACTLY %d comprehension questions about the document above.\n", constant.QuizQuestionCount))
	prompt.WriteString("Questions must be answerable from the document alone, each covering a different part or aspect.\n")
	prompt.WriteString("For each question include a short hint describing what a correct answer mentions.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY this JSON object, no other text:\n")
	prompt.WriteString(`{"questions": [{"id": 1, "text": "<question>", "answer_hint": "<what a correct answer mentions>"}, ...]}` + "\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

// BuildEvaluationPrompt asks for a verdict on a user's answer, judged
// strictly against the document.
func BuildEvaluationPrompt(docText, question, userAnswer string) string {
	var prompt strings.Builder

	prompt.WriteString("<document>\n")
	prompt.WriteString(ClampDocument(docText, constant.EvaluationDocumentLimit))
	prompt.WriteString("\n</document>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString("Evaluate whether the user's answer to the question is correct, judged STRICTLY against the document above.\n")
	prompt.WriteString("CRITICAL: The document is the ONLY data source. Do NOT use outside knowledge.\n")
	prompt.WriteString("Give constructive feedback and a justification referencing the part of the document that decides the verdict.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<user_answer>\n")
	prompt.WriteString(userAnswer)
	prompt.WriteString("\n</user_answer>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY this JSON object, no other text:\n")
	prompt.WriteString(`{"is_correct": true|false, "feedback": "<constructive feedback>", "justification": "<supporting reference>"}` + "\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}
