package repository

import (
	"context"

	"github.com/google/uuid"

	"leadboard/internal/gateway"
)

const teamsTable = "teams"

type Team struct {
	ID   string
	Name string
}

type TeamRepository interface {
	Create(ctx context.Context, name string) (*Team, error)
	Get(ctx context.Context, id string) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
	Delete(ctx context.Context, id string) error
}

type teamRepository struct {
	store gateway.TableGateway
}

func NewTeamRepository(store gateway.TableGateway) TeamRepository {
	return &teamRepository{store: store}
}

func (r *teamRepository) Create(ctx context.Context, name string) (*Team, error) {
	rec, err := r.store.Insert(ctx, teamsTable, gateway.Record{
		"id":        uuid.NewString(),
		"team_name": name,
	})
	if err != nil {
		return nil, err
	}
	return teamFromRecord(rec), nil
}

func (r *teamRepository) Get(ctx context.Context, id string) (*Team, error) {
	recs, err := r.store.Select(ctx, teamsTable, gateway.Filters{"id": id})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return teamFromRecord(recs[0]), nil
}

func (r *teamRepository) List(ctx context.Context) ([]*Team, error) {
	recs, err := r.store.Select(ctx, teamsTable, nil)
	if err != nil {
		return nil, err
	}

	teams := make([]*Team, 0, len(recs))
	for _, rec := range recs {
		teams = append(teams, teamFromRecord(rec))
	}
	return teams, nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.store.Delete(ctx, teamsTable, gateway.Filters{"id": id})
	if err != nil {
		return err
	}
	if len(affected) == 0 {
		return ErrNotFound
	}
	return nil
}

func teamFromRecord(rec gateway.Record) *Team {
	return &Team{
		ID:   asString(rec["id"]),
		Name: asString(rec["team_name"]),
	}
}
