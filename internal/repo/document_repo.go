package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/voyagent/voyagent/internal/model"
	"github.com/voyagent/voyagent/internal/pkg/dbutil"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.TravelDocument) error {
	data := map[string]interface{}{
		"id":               doc.ID,
		"destination_id":   doc.DestinationID,
		"destination_name": doc.DestinationName,
		"content":          doc.Content,
		"ctime":            doc.Ctime,
		"mtime":            doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("travel_documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*model.TravelDocument, error) {
	const query = `
		SELECT id, destination_id, destination_name, content, embedding IS NOT NULL, ctime, mtime
		FROM travel_documents
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	var doc model.TravelDocument
	if err := row.Scan(&doc.ID, &doc.DestinationID, &doc.DestinationName, &doc.Content, &doc.HasEmbedding, &doc.Ctime, &doc.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) List(ctx context.Context, limit, offset int) ([]model.TravelDocument, error) {
	const query = `
		SELECT id, destination_id, destination_name, content, embedding IS NOT NULL, ctime, mtime
		FROM travel_documents
		ORDER BY ctime DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.TravelDocument
	for rows.Next() {
		var doc model.TravelDocument
		if err := rows.Scan(&doc.ID, &doc.DestinationID, &doc.DestinationName, &doc.Content, &doc.HasEmbedding, &doc.Ctime, &doc.Mtime); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateEmbedding attaches a vector to an existing document, making it
// search-ready. Zero affected rows means the document is gone.
func (r *DocumentRepo) UpdateEmbedding(ctx context.Context, id string, embedding []float32, mtime int64) error {
	const query = `
		UPDATE travel_documents
		SET embedding = $1, mtime = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, pgvector.NewVector(embedding), mtime, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	where := map[string]interface{}{
		"id in": ids,
	}
	sqlStr, args, err := builder.BuildDelete("travel_documents", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Search runs the stored similarity function. Documents without an embedding
// can never match: the function filters them out before ranking.
func (r *DocumentRepo) Search(ctx context.Context, queryEmbedding []float32, threshold float64, limit int) ([]model.RetrievedDocument, error) {
	const query = `SELECT destination_name, content, similarity FROM match_travel_documents($1, $2, $3)`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(queryEmbedding), threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.RetrievedDocument
	for rows.Next() {
		var doc model.RetrievedDocument
		if err := rows.Scan(&doc.DestinationName, &doc.Content, &doc.Similarity); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListMissingEmbedding feeds the backfill job with documents that are not yet
// search-ready.
func (r *DocumentRepo) ListMissingEmbedding(ctx context.Context, limit int) ([]model.TravelDocument, error) {
	const query = `
		SELECT id, destination_id, destination_name, content, false, ctime, mtime
		FROM travel_documents
		WHERE embedding IS NULL
		ORDER BY ctime
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.TravelDocument
	for rows.Next() {
		var doc model.TravelDocument
		if err := rows.Scan(&doc.ID, &doc.DestinationID, &doc.DestinationName, &doc.Content, &doc.HasEmbedding, &doc.Ctime, &doc.Mtime); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
