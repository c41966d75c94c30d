package repository

import (
	"context"

	"github.com/google/uuid"

	"leadboard/internal/gateway"
)

const membersTable = "team_members"

type Member struct {
	ID            string
	Name          string
	Email         string
	TeamID        string
	WeeklyTarget  int
	MonthlyTarget int
}

// MemberPatch carries a partial update; nil fields are not written.
type MemberPatch struct {
	ID            string
	Name          *string
	Email         *string
	TeamID        *string
	WeeklyTarget  *int
	MonthlyTarget *int
}

type MemberRepository interface {
	Create(ctx context.Context, member *Member) (*Member, error)
	Get(ctx context.Context, id string) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
	ListByTeam(ctx context.Context, teamID string) ([]*Member, error)
	Patch(ctx context.Context, patch *MemberPatch) (*Member, error)
	Delete(ctx context.Context, id string) error
	DeleteByTeam(ctx context.Context, teamID string) (int, error)
}

type memberRepository struct {
	store gateway.TableGateway
}

func NewMemberRepository(store gateway.TableGateway) MemberRepository {
	return &memberRepository{store: store}
}

func (r *memberRepository) Create(ctx context.Context, member *Member) (*Member, error) {
	rec, err := r.store.Insert(ctx, membersTable, gateway.Record{
		"id":             uuid.NewString(),
		"name":           member.Name,
		"email":          member.Email,
		"team_id":        member.TeamID,
		"weekly_target":  member.WeeklyTarget,
		"monthly_target": member.MonthlyTarget,
	})
	if err != nil {
		return nil, err
	}
	return memberFromRecord(rec), nil
}

func (r *memberRepository) Get(ctx context.Context, id string) (*Member, error) {
	recs, err := r.store.Select(ctx, membersTable, gateway.Filters{"id": id})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return memberFromRecord(recs[0]), nil
}

func (r *memberRepository) List(ctx context.Context) ([]*Member, error) {
	return r.selectMembers(ctx, nil)
}

func (r *memberRepository) ListByTeam(ctx context.Context, teamID string) ([]*Member, error) {
	return r.selectMembers(ctx, gateway.Filters{"team_id": teamID})
}

func (r *memberRepository) Patch(ctx context.Context, patch *MemberPatch) (*Member, error) {
	fields := gateway.Record{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.TeamID != nil {
		fields["team_id"] = *patch.TeamID
	}
	if patch.WeeklyTarget != nil {
		fields["weekly_target"] = *patch.WeeklyTarget
	}
	if patch.MonthlyTarget != nil {
		fields["monthly_target"] = *patch.MonthlyTarget
	}

	affected, err := r.store.Update(ctx, membersTable, fields, gateway.Filters{"id": patch.ID})
	if err != nil {
		return nil, err
	}
	if len(affected) == 0 {
		return nil, ErrNotFound
	}
	return memberFromRecord(affected[0]), nil
}

func (r *memberRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.store.Delete(ctx, membersTable, gateway.Filters{"id": id})
	if err != nil {
		return err
	}
	if len(affected) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByTeam removes every member of the team and reports how many were
// deleted. Zero is not an error: a retried cascade may find none left.
func (r *memberRepository) DeleteByTeam(ctx context.Context, teamID string) (int, error) {
	affected, err := r.store.Delete(ctx, membersTable, gateway.Filters{"team_id": teamID})
	if err != nil {
		return 0, err
	}
	return len(affected), nil
}

func (r *memberRepository) selectMembers(ctx context.Context, filters gateway.Filters) ([]*Member, error) {
	recs, err := r.store.Select(ctx, membersTable, filters)
	if err != nil {
		return nil, err
	}

	members := make([]*Member, 0, len(recs))
	for _, rec := range recs {
		members = append(members, memberFromRecord(rec))
	}
	return members, nil
}

func memberFromRecord(rec gateway.Record) *Member {
	return &Member{
		ID:            asString(rec["id"]),
		Name:          asString(rec["name"]),
		Email:         asString(rec["email"]),
		TeamID:        asString(rec["team_id"]),
		WeeklyTarget:  asInt(rec["weekly_target"]),
		MonthlyTarget: asInt(rec["monthly_target"]),
	}
}
