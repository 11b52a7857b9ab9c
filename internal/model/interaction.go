package model

const (
	InteractionKindChat = "chat"
	InteractionKindTask = "task"
)

// Interaction is the append-only audit entry for one chat exchange or one
// task execution. DocumentID is empty for document-less chat. Records are
// never updated; they are deleted only when the owning document is deleted.
type Interaction struct {
	ID             string        `json:"id"`
	DocumentID     string        `json:"document_id,omitempty"`
	Kind           string        `json:"kind"`
	Messages       []ChatMessage `json:"messages,omitempty"`
	TaskType       string        `json:"task_type,omitempty"`
	Result         string        `json:"result,omitempty"`
	Instructions   string        `json:"additional_instructions,omitempty"`
	ModelUsed      string        `json:"model_used"`
	ProcessingTime float64       `json:"processing_time"`
	Timestamp      int64         `json:"timestamp"`
}
