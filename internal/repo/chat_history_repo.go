package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/voyagent/voyagent/internal/model"
	"github.com/voyagent/voyagent/internal/pkg/dbutil"
)

type ChatHistoryRepo struct {
	db *sql.DB
}

func NewChatHistoryRepo(db *sql.DB) *ChatHistoryRepo {
	return &ChatHistoryRepo{db: db}
}

// Insert appends one turn. The table is append-only; transcripts are ordered
// at read time by created_at.
func (r *ChatHistoryRepo) Insert(ctx context.Context, msg *model.ChatMessage) error {
	var userID interface{}
	if msg.UserID != "" {
		userID = msg.UserID
	}
	data := map[string]interface{}{
		"id":         msg.ID,
		"session_id": msg.SessionID,
		"user_id":    userID,
		"role":       msg.Role,
		"content":    msg.Content,
		"created_at": msg.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("travel_chat_history", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListBySession returns the most recent turns of a session in transcript
// order. The limit must trim the oldest turns, not the newest, so the query
// walks backwards and the rows are reversed before returning.
func (r *ChatHistoryRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	const query = `
		SELECT id, session_id, COALESCE(user_id, ''), role, content, created_at
		FROM travel_chat_history
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.UserID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
