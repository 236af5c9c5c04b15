package llms

type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleModel MessageRole = "model"
)

// Message is a single transcript entry.
type Message struct {
	ID      string
	Role    MessageRole
	Content string
}
