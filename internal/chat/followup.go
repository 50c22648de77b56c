package chat

import (
	"strings"
	"time"

	"github.com/voyagent/voyagent/internal/model"
)

// IsFollowUp reports whether a new message continues an established topic.
// The session must already hold a completed exchange (a user turn answered by
// an assistant turn) and the last activity must fall inside the recency
// window. now is in unix seconds.
func IsFollowUp(history []model.ChatMessage, now int64, window time.Duration) bool {
	if len(history) < 2 {
		return false
	}
	sawUser := false
	var lastAssistant *model.ChatMessage
	for i := range history {
		switch history[i].Role {
		case model.RoleUser:
			sawUser = true
		case model.RoleAssistant:
			lastAssistant = &history[i]
		}
	}
	if !sawUser || lastAssistant == nil {
		return false
	}
	// The current user turn is already persisted when this runs, so recency
	// is judged by the last completed answer, not the last message.
	if window > 0 && now-lastAssistant.CreatedAt > int64(window/time.Second) {
		return false
	}
	return true
}

// FollowUpQuery expands a follow-up message with the preceding user turns so
// retrieval keeps the established context. The current message is expected to
// already be part of history; otherwise it is appended to the expansion.
func FollowUpQuery(history []model.ChatMessage, current string, turns int) string {
	if turns <= 0 {
		turns = 3
	}
	var userTurns []string
	for _, msg := range history {
		if msg.Role == model.RoleUser {
			userTurns = append(userTurns, msg.Content)
		}
	}
	if len(userTurns) == 0 || userTurns[len(userTurns)-1] != current {
		userTurns = append(userTurns, current)
	}
	if len(userTurns) > turns {
		userTurns = userTurns[len(userTurns)-turns:]
	}
	return strings.Join(userTurns, "\n")
}
