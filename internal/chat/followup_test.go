package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/internal/model"
)

func TestIsFollowUp_RequiresCompletedExchange(t *testing.T) {
	now := time.Now().Unix()
	window := 30 * time.Minute

	require.False(t, IsFollowUp(nil, now, window))
	require.False(t, IsFollowUp([]model.ChatMessage{
		{Role: model.RoleUser, Content: "hi", CreatedAt: now},
	}, now, window))
	// Two user turns but no answer yet.
	require.False(t, IsFollowUp([]model.ChatMessage{
		{Role: model.RoleUser, Content: "hi", CreatedAt: now},
		{Role: model.RoleUser, Content: "hello?", CreatedAt: now},
	}, now, window))
}

func TestIsFollowUp_WithinWindow(t *testing.T) {
	now := time.Now().Unix()
	history := []model.ChatMessage{
		{Role: model.RoleUser, Content: "Tell me about Lisbon", CreatedAt: now - 120},
		{Role: model.RoleAssistant, Content: "Lisbon is...", CreatedAt: now - 110},
		{Role: model.RoleUser, Content: "What about food there?", CreatedAt: now},
	}
	require.True(t, IsFollowUp(history, now, 30*time.Minute))
}

func TestIsFollowUp_StaleConversation(t *testing.T) {
	now := time.Now().Unix()
	history := []model.ChatMessage{
		{Role: model.RoleUser, Content: "Tell me about Lisbon", CreatedAt: now - 7200},
		{Role: model.RoleAssistant, Content: "Lisbon is...", CreatedAt: now - 7190},
		{Role: model.RoleUser, Content: "What about food there?", CreatedAt: now},
	}
	require.False(t, IsFollowUp(history, now, 30*time.Minute))
	// Zero window disables the recency check entirely.
	require.True(t, IsFollowUp(history, now, 0))
}

func TestFollowUpQuery_JoinsRecentUserTurns(t *testing.T) {
	history := []model.ChatMessage{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "answer one"},
		{Role: model.RoleUser, Content: "second"},
		{Role: model.RoleAssistant, Content: "answer two"},
		{Role: model.RoleUser, Content: "third"},
		{Role: model.RoleAssistant, Content: "answer three"},
		{Role: model.RoleUser, Content: "fourth"},
	}
	got := FollowUpQuery(history, "fourth", 3)
	require.Equal(t, "second\nthird\nfourth", got)
}

func TestFollowUpQuery_AppendsCurrentWhenNotPersisted(t *testing.T) {
	history := []model.ChatMessage{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "answer"},
	}
	got := FollowUpQuery(history, "second", 3)
	require.Equal(t, "first\nsecond", got)
}
