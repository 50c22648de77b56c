package model

type Destination struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Region      string `json:"region"`
	Description string `json:"description"`
	BudgetTier  string `json:"budget_tier"`
	Climate     string `json:"climate"`
	BestSeason  string `json:"best_season"`
	ImageKey    string `json:"image_key,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}
