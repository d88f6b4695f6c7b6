package support

import (
	"time"

	"github.com/xraph/digigate/id"
)

// AssistantID is the sender id of every assistant message.
const AssistantID = "ai-assistant"

// Response is the assistant's answer to one user message.
type Response struct {
	Message         string   `json:"message"`
	Confidence      float64  `json:"confidence"`
	Suggestions     []string `json:"suggestions,omitempty"`
	EscalateToHuman bool     `json:"escalateToHuman"`
}

// Sender identifies the author of a chat message.
type Sender struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Message is one entry of a support conversation.
type Message struct {
	ID        id.MessageID `json:"id"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
	User      Sender       `json:"user"`
	System    bool         `json:"system,omitempty"`
}

func clone(r Response) Response {
	r.Suggestions = append([]string(nil), r.Suggestions...)
	return r
}
