package model

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type ProviderInfo struct {
	Name            string   `json:"name"`
	AvailableModels []string `json:"available_models"`
	Status          string   `json:"status"`
}
