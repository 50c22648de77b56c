package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type ChatMessage struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// PreferenceProfile is recomputed from scratch on every turn from the full
// user-turn history of a session.
type PreferenceProfile struct {
	Budget     string   `json:"budget,omitempty"`
	Region     string   `json:"region,omitempty"`
	Interests  []string `json:"interests,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	Climate    string   `json:"climate,omitempty"`
	TravelWith string   `json:"travel_with,omitempty"`
}

func (p PreferenceProfile) Empty() bool {
	return p.Budget == "" && p.Region == "" && len(p.Interests) == 0 &&
		p.Duration == "" && p.Climate == "" && p.TravelWith == ""
}
