package service

import (
	"context"
	"strings"

	"github.com/voyagent/voyagent/internal/model"
	appErr "github.com/voyagent/voyagent/internal/pkg/errors"
	"github.com/voyagent/voyagent/internal/pkg/timeutil"
	"github.com/voyagent/voyagent/internal/repo"
)

type DestinationService struct {
	destinations *repo.DestinationRepo
}

func NewDestinationService(destinations *repo.DestinationRepo) *DestinationService {
	return &DestinationService{destinations: destinations}
}

type DestinationCreateInput struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	Region      string `json:"region"`
	Description string `json:"description"`
	BudgetTier  string `json:"budget_tier"`
	Climate     string `json:"climate"`
	BestSeason  string `json:"best_season"`
	ImageKey    string `json:"image_key"`
	Tags        string `json:"tags"`
}

func (s *DestinationService) Create(ctx context.Context, in DestinationCreateInput) (*model.Destination, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	dest := &model.Destination{
		ID:          newID(),
		Name:        in.Name,
		Country:     in.Country,
		Region:      strings.ToLower(in.Region),
		Description: in.Description,
		BudgetTier:  strings.ToLower(in.BudgetTier),
		Climate:     strings.ToLower(in.Climate),
		BestSeason:  in.BestSeason,
		ImageKey:    in.ImageKey,
		Tags:        in.Tags,
		Ctime:       now,
		Mtime:       now,
	}
	if err := s.destinations.Create(ctx, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

func (s *DestinationService) Get(ctx context.Context, id string) (*model.Destination, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErr.ErrInvalid
	}
	return s.destinations.GetByID(ctx, id)
}

func (s *DestinationService) List(ctx context.Context, filter repo.DestinationFilter, limit, offset int) ([]model.Destination, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	filter.Region = strings.ToLower(strings.TrimSpace(filter.Region))
	filter.BudgetTier = strings.ToLower(strings.TrimSpace(filter.BudgetTier))
	filter.Climate = strings.ToLower(strings.TrimSpace(filter.Climate))
	filter.Query = strings.TrimSpace(filter.Query)
	return s.destinations.List(ctx, filter, limit, offset)
}
