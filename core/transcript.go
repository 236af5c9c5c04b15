package orchestration

import (
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/tutoring"
)

// transcript is the visible conversation. Only the reply being streamed is
// ever mutated, and it is addressed by ID so a superseded turn can never
// write into a newer turn's reply.
type transcript struct {
	messages []llms.Message
	// greeted is set once the greeting for the hidden opening prompt
	// arrived; the prompt is then replayed at the start of every history.
	greeted bool
}

func (t *transcript) reset() {
	t.messages = nil
	t.greeted = false
}

func (t *transcript) append(role llms.MessageRole, content string) string {
	id := uuid.NewString()
	t.messages = append(t.messages, llms.Message{ID: id, Role: role, Content: content})
	return id
}

func (t *transcript) find(id string) *llms.Message {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].ID == id {
			return &t.messages[i]
		}
	}
	return nil
}

func (t *transcript) appendTo(id, chunk string) bool {
	message := t.find(id)
	if message == nil {
		return false
	}
	message.Content += chunk
	return true
}

func (t *transcript) overwrite(id, content string) bool {
	message := t.find(id)
	if message == nil {
		return false
	}
	message.Content = content
	return true
}

// history is what the chat model sees: the hidden opening prompt followed by
// every non-empty message except the reply being requested.
func (t *transcript) history(exclude string) []llms.Message {
	history := make([]llms.Message, 0, len(t.messages)+1)
	if t.greeted {
		history = append(history, llms.Message{Role: llms.MessageRoleUser, Content: tutoring.GreetingPrompt})
	}
	for _, message := range t.messages {
		if message.ID == exclude || message.Content == "" {
			continue
		}
		history = append(history, message)
	}
	return history
}

func (t *transcript) snapshot() []llms.Message {
	var messages []llms.Message
	if err := copier.CopyWithOption(&messages, t.messages, copier.Option{DeepCopy: true}); err != nil {
		logger.Error("failed to copy transcript", "error", err)
		return append([]llms.Message(nil), t.messages...)
	}
	return messages
}
