// Package prompts builds the generation prompts for every artifact kind.
// Each JSON-producing prompt has a strict variant used for the single
// retry after a parse or validation failure.
package prompts

import (
	"strings"

	"github.com/pavelanni/studybuddy/internal/model"
)

// strictSuffix is appended on the retry attempt. It is a generic repair
// instruction, deliberately not specific to what went wrong.
const strictSuffix = `

STRICT MODE: Your previous response could not be parsed. Respond with ONLY the JSON array itself: the very first character of your response must be [ and the very last character must be ]. No code fences, no commentary, no prose of any kind.`

// Flashcards returns the flashcard generation prompt for the given study
// material.
func Flashcards(material string, strict bool) string {
	var sb strings.Builder
	sb.WriteString("Generate a JSON array of 20-30 flashcards from the study material below.\n\n")
	sb.WriteString("CRITICAL OUTPUT REQUIREMENTS:\n")
	sb.WriteString("- Output ONLY a valid JSON array. Start with [ and end with ]\n")
	sb.WriteString("- Do NOT include any explanatory text before or after the JSON\n")
	sb.WriteString("- Do NOT include markdown code fences (```)\n")
	sb.WriteString("- Your entire response must be parseable as JSON\n\n")
	sb.WriteString("Each flashcard object must have:\n")
	sb.WriteString("- \"question\": A single sentence prompt (not yes/no question)\n")
	sb.WriteString("- \"answer\": A specific answer in 1-3 sentences\n\n")
	sb.WriteString("Quality guidelines:\n")
	sb.WriteString("- Cover core definitions, facts, processes, and relationships\n")
	sb.WriteString("- Make each card self-contained and memorizable\n")
	sb.WriteString("- Avoid repeating information across cards\n")
	sb.WriteString("- Prioritize factual precision over creative wording\n\n")
	writeMaterial(&sb, material)
	sb.WriteString("\nJSON array:")
	if strict {
		sb.WriteString(strictSuffix)
	}
	return sb.String()
}

// Exam returns the multiple-choice practice exam generation prompt.
func Exam(material string, strict bool) string {
	var sb strings.Builder
	sb.WriteString("Generate a JSON array of 15-20 multiple-choice exam questions based on the study material below.\n\n")
	sb.WriteString("CRITICAL OUTPUT REQUIREMENTS:\n")
	sb.WriteString("- Output ONLY a valid JSON array. Start with [ and end with ]\n")
	sb.WriteString("- Do NOT include any explanatory text before or after the JSON\n")
	sb.WriteString("- Your entire response must be parseable as JSON\n")
	sb.WriteString("- Each question MUST have EXACTLY 4 options - no more, no less\n\n")
	sb.WriteString("Each question object must have:\n")
	sb.WriteString("- \"question\": A clear, direct question (one sentence)\n")
	sb.WriteString("- \"options\": An array of EXACTLY 4 answer choices (strings) - this is mandatory\n")
	sb.WriteString("- \"correctAnswer\": The exact text of one of the 4 options\n\n")
	sb.WriteString("Quality guidelines:\n")
	sb.WriteString("- Target distinct, high-value concepts from the material\n")
	sb.WriteString("- Make all 4 options mutually exclusive and similar in length\n")
	sb.WriteString("- Only the correct answer should be fully accurate\n")
	sb.WriteString("- Create 3 realistic distractors based on common misconceptions\n\n")
	writeMaterial(&sb, material)
	sb.WriteString("\nJSON array with each question having EXACTLY 4 options:")
	if strict {
		sb.WriteString(strictSuffix)
	}
	return sb.String()
}

// Summary returns the study-guide generation prompt. The response is
// markdown with [IMAGE_PROMPT: ...] lines, not JSON, so there is no
// strict variant.
func Summary(material string) string {
	var sb strings.Builder
	sb.WriteString("Create a study guide summary following this EXACT structure. Do not deviate from this format.\n\n")
	sb.WriteString("MANDATORY FORMAT - Copy this structure exactly:\n\n")
	sb.WriteString("## Introduction\n")
	sb.WriteString("[Write 3-4 paragraphs here introducing the main topic and why it matters]\n\n")
	sb.WriteString("[IMAGE_PROMPT: Describe a vivid illustration scene here with concrete visual details]\n\n")
	sb.WriteString("## Key Concepts\n")
	sb.WriteString("[Write 4-6 paragraphs here explaining the main ideas, processes, or mechanisms]\n\n")
	sb.WriteString("[IMAGE_PROMPT: Describe another illustration showing the concepts in action]\n\n")
	sb.WriteString("## Summary\n")
	sb.WriteString("[Write 2-3 paragraphs here summarizing the key takeaways]\n\n")
	sb.WriteString("[IMAGE_PROMPT: Describe a final illustration that reinforces the main message]\n\n")
	sb.WriteString("CRITICAL RULES:\n")
	sb.WriteString("1. Start with \"## Introduction\" exactly as shown\n")
	sb.WriteString("2. After each section's paragraphs, add ONE line: [IMAGE_PROMPT: description]\n")
	sb.WriteString("3. Do NOT use markdown image syntax like ![text](url)\n")
	sb.WriteString("4. Do NOT skip sections or change section names\n")
	sb.WriteString("5. IMAGE_PROMPT descriptions should be SHORT (20-40 words maximum)\n\n")
	sb.WriteString("IMAGE PROMPT RULES:\n")
	sb.WriteString("- Create SYMBOLIC or CONCEPTUAL scenes, NOT technical diagrams\n")
	sb.WriteString("- NO charts, graphs, flowcharts, or network diagrams\n")
	sb.WriteString("- NO text, labels, arrows, or annotations in the image\n")
	sb.WriteString("- Use concrete objects: locks, keys, doors, hands, books, light, nature, architecture\n")
	sb.WriteString("- Focus on: lighting, mood, composition, realistic objects, symbolic representation\n\n")
	writeMaterial(&sb, material)
	sb.WriteString("\nNow write the study guide following the exact format above:\n\n## Introduction")
	return sb.String()
}

// Chat returns the tutoring prompt grounded in the assembled document
// context and the compacted conversation.
func Chat(docContext, conversation, message string) string {
	var sb strings.Builder
	sb.WriteString("You are StudyBuddy, a focused and reliable tutor.\n")
	sb.WriteString("The user has uploaded one or more study documents. You must answer questions only using information found in those documents or prior conversation.\n\n")
	sb.WriteString("Core rules:\n")
	sb.WriteString("- Never make up or infer facts not explicitly supported by the provided material.\n")
	sb.WriteString("- If the answer cannot be located in the documents, say: \"I couldn't find that information in the provided materials.\"\n")
	sb.WriteString("- When the answer is supported by the documents, reference the relevant document or quoted phrase when possible.\n")
	sb.WriteString("- Be clear, concise, and explanatory - no longer than four short paragraphs.\n")
	sb.WriteString("- Avoid meta-commentary such as \"As an AI model\" or \"Please note\".\n")
	sb.WriteString("- When referring to earlier messages, quote short phrases in quotation marks.\n")
	sb.WriteString("- If there is ambiguity, briefly ask for clarification rather than assuming.\n\n")
	sb.WriteString("Study material (authoritative facts):\n")
	sb.WriteString(docContext)
	sb.WriteString("\n\nConversation so far:\n")
	if conversation == "" {
		sb.WriteString("(none)\n")
	} else {
		sb.WriteString(conversation)
		sb.WriteString("\n")
	}
	sb.WriteString("\nUser: " + message + "\nAssistant:")
	return sb.String()
}

// RenderHistory flattens a chat history into the "User:/Assistant:"
// transcript format the chat prompt embeds.
func RenderHistory(history []model.ChatMessage) string {
	var lines []string
	for _, m := range history {
		speaker := "User"
		if m.Role == model.RoleAssistant {
			speaker = "Assistant"
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func writeMaterial(sb *strings.Builder, material string) {
	sb.WriteString("<<<STUDY_MATERIAL>>>\n")
	sb.WriteString(strings.TrimSpace(material))
	sb.WriteString("\n<<<END_STUDY_MATERIAL>>>\n")
}
