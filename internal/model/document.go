package model

// TravelDocument is the unit of retrievable knowledge. A document becomes
// search-ready only once Embedding is non-nil.
type TravelDocument struct {
	ID              string    `json:"id"`
	DestinationID   string    `json:"destination_id"`
	DestinationName string    `json:"destination_name"`
	Content         string    `json:"content"`
	Embedding       []float32 `json:"-"`
	HasEmbedding    bool      `json:"has_embedding"`
	Ctime           int64     `json:"ctime"`
	Mtime           int64     `json:"mtime"`
}

// RetrievedDocument is produced transiently per query, never persisted.
type RetrievedDocument struct {
	DestinationName string  `json:"destination_name"`
	Content         string  `json:"content"`
	Similarity      float64 `json:"similarity"`
}
