package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/voyagent/voyagent/internal/model"
	"github.com/voyagent/voyagent/internal/pkg/dbutil"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
)

type DestinationRepo struct {
	db *sql.DB
}

func NewDestinationRepo(db *sql.DB) *DestinationRepo {
	return &DestinationRepo{db: db}
}

type DestinationFilter struct {
	Region     string
	BudgetTier string
	Climate    string
	Query      string
}

var destinationColumns = []string{
	"id", "name", "country", "region", "description",
	"budget_tier", "climate", "best_season", "image_key", "tags",
	"ctime", "mtime",
}

func (r *DestinationRepo) Create(ctx context.Context, dest *model.Destination) error {
	data := map[string]interface{}{
		"id":          dest.ID,
		"name":        dest.Name,
		"country":     dest.Country,
		"region":      dest.Region,
		"description": dest.Description,
		"budget_tier": dest.BudgetTier,
		"climate":     dest.Climate,
		"best_season": dest.BestSeason,
		"image_key":   dest.ImageKey,
		"tags":        dest.Tags,
		"ctime":       dest.Ctime,
		"mtime":       dest.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("destinations", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *DestinationRepo) GetByID(ctx context.Context, id string) (*model.Destination, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("destinations", where, destinationColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	dest, err := scanDestination(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return dest, nil
}

func (r *DestinationRepo) List(ctx context.Context, filter DestinationFilter, limit, offset int) ([]model.Destination, error) {
	where := map[string]interface{}{
		"_orderby": "name",
		"_limit":   []uint{uint(offset), uint(limit)},
	}
	if filter.Region != "" {
		where["region"] = filter.Region
	}
	if filter.BudgetTier != "" {
		where["budget_tier"] = filter.BudgetTier
	}
	if filter.Climate != "" {
		where["climate"] = filter.Climate
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		where["_or"] = []map[string]interface{}{
			{"name like": pattern},
			{"country like": pattern},
			{"description like": pattern},
		}
	}
	sqlStr, args, err := builder.BuildSelect("destinations", where, destinationColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dests []model.Destination
	for rows.Next() {
		dest, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		dests = append(dests, *dest)
	}
	return dests, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDestination(row rowScanner) (*model.Destination, error) {
	var dest model.Destination
	err := row.Scan(
		&dest.ID, &dest.Name, &dest.Country, &dest.Region, &dest.Description,
		&dest.BudgetTier, &dest.Climate, &dest.BestSeason, &dest.ImageKey, &dest.Tags,
		&dest.Ctime, &dest.Mtime,
	)
	if err != nil {
		return nil, err
	}
	return &dest, nil
}
