package ai

import "strings"

// Context limits are counted in code points and always keep a prefix of the
// document. Oversized documents silently lose trailing content from the
// model's view; callers that need the tail must not rely on these prompts.
const (
	ChatContextLimit = 8000
	TaskContextLimit = 10000
)

const (
	TaskSummarize           = "summarize"
	TaskExtractKeyPoints    = "extract_key_points"
	TaskRewrite             = "rewrite"
	TaskAnalyze             = "analyze"
	TaskTranslate           = "translate"
	TaskCompressSuggestions = "compress_suggestions"
)

const chatSystemMessage = "You are an AI assistant specialized in PDF document analysis and management. You can help with summarization, extraction, editing suggestions, and answering questions about documents."

const taskSystemMessage = "You are an expert document processor specialized in PDF analysis, editing, and optimization."

const defaultTaskDirective = "Analyze this document:"

var taskDirectives = map[string]string{
	TaskSummarize:           "Please provide a comprehensive summary of this document, highlighting the key points, main arguments, and important details.",
	TaskExtractKeyPoints:    "Extract and list the key points, important facts, and main takeaways from this document in a structured format.",
	TaskRewrite:             "Rewrite this document to improve clarity, readability, and flow while maintaining the original meaning and key information.",
	TaskAnalyze:             "Analyze this document thoroughly, including its structure, arguments, evidence, tone, and provide insights about its content and quality.",
	TaskTranslate:           "Translate this document to English if it's in another language, or provide language analysis if it's already in English.",
	TaskCompressSuggestions: "Analyze this document and suggest ways to compress or reduce its size while maintaining essential information and readability.",
}

func IsTaskType(name string) bool {
	_, ok := taskDirectives[name]
	return ok
}

func TaskTypes() []string {
	return []string{
		TaskSummarize,
		TaskExtractKeyPoints,
		TaskRewrite,
		TaskAnalyze,
		TaskTranslate,
		TaskCompressSuggestions,
	}
}

// BuildChatInstruction renders the system instruction for a chat call.
// When document text is supplied it is appended truncated to the first
// ChatContextLimit characters.
func BuildChatInstruction(documentText string) string {
	if documentText == "" {
		return chatSystemMessage
	}
	var b strings.Builder
	b.WriteString(chatSystemMessage)
	b.WriteString("\n\nCurrent document content:\n")
	b.WriteString(truncate(documentText, ChatContextLimit))
	return b.String()
}

// BuildTaskInstruction renders the user prompt for a fixed-purpose task.
// Unknown task types fall back to a generic directive; validated transport
// input never reaches that branch.
func BuildTaskInstruction(taskType, documentText, additionalInstructions string) string {
	directive, ok := taskDirectives[taskType]
	if !ok {
		directive = defaultTaskDirective
	}
	var b strings.Builder
	b.WriteString(directive)
	if additionalInstructions != "" {
		b.WriteString("\n\nAdditional instructions: ")
		b.WriteString(additionalInstructions)
	}
	b.WriteString("\n\nDocument content:\n")
	b.WriteString(truncate(documentText, TaskContextLimit))
	return b.String()
}

// TaskSystemMessage is the background instruction sent alongside every
// task prompt.
func TaskSystemMessage() string {
	return taskSystemMessage
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
