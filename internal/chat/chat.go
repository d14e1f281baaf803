// Package chat answers free-form farming and gardening questions.
package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/pestid/internal/location"
)

// ErrEmptyMessage is returned for blank input. No model call is made.
var ErrEmptyMessage = errors.New("empty chat message")

// FallbackReply is sent when the model cannot answer.
const FallbackReply = "Sorry, I had trouble processing that. Please try again."

// MaxHistory is the number of prior turns included in the prompt.
const MaxHistory = 20

// Message is one chat turn.
type Message struct {
	Text   string `json:"text"`
	IsUser bool   `json:"isUser"`
}

// Request is a user message with optional context.
type Request struct {
	Message  string         `json:"message"`
	History  []Message      `json:"history,omitempty"`
	Location *location.Info `json:"location,omitempty"`
}

// Reply is the assistant's answer. Fallback is set when Reply is the
// canned apology rather than model output.
type Reply struct {
	Reply    string `json:"reply"`
	Fallback bool   `json:"fallback"`
}

const systemPrompt = `You are an experienced agricultural extension officer and gardening expert. Give practical, safe advice on crops, soil, irrigation, pests and plant diseases. Prefer integrated pest management and organic options before synthetic chemicals, and mention protective equipment and pre-harvest intervals when you recommend a pesticide. Keep answers concise and use plain language. If a question is unrelated to farming or gardening, politely steer the conversation back.`

// BuildPrompt assembles the prompt for message given prior turns and an
// optional location. Only the last MaxHistory turns are included.
func BuildPrompt(message string, history []Message, loc *location.Info) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if loc != nil && loc.Known() {
		place := loc.Country
		if r := strings.TrimSpace(loc.Region); r != "" && r != location.Unknown {
			place = r + ", " + place
		}
		fmt.Fprintf(&b, "\n\nThe user farms in %s. Tailor advice to its climate, seasons and locally available products.", place)
	}

	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	if len(history) > 0 {
		b.WriteString("\n\nConversation so far:\n")
		for _, m := range history {
			text := strings.TrimSpace(m.Text)
			if text == "" {
				continue
			}
			role := "Assistant"
			if m.IsUser {
				role = "User"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, text)
		}
	}

	fmt.Fprintf(&b, "\n\nUser: %s\nAssistant:", message)
	return b.String()
}
