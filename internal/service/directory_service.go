package service

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"leadboard/internal/model"
	"leadboard/internal/repository"
	"leadboard/pkg/logger"
)

// DirectoryService owns teams and team members: CRUD plus the referential
// rules the store does not enforce (team must exist before a member points
// at it, deleting a team removes its members first).
type DirectoryService struct {
	teams   repository.TeamRepository
	members repository.MemberRepository
}

func NewDirectoryService() *DirectoryService {
	return &DirectoryService{}
}

func (d *DirectoryService) CreateTeam(ctx context.Context, name string) (*model.Team, *Error) {
	l := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewError(ErrorCodeValidation, "team name must not be empty")
	}

	team, err := d.teams.Create(ctx, name)
	if err != nil {
		l.Error("failed to create team", zap.String("team_name", name), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to create team")
	}

	l.Info("team created", zap.String("team_id", team.ID), zap.String("team_name", team.Name))

	return &model.Team{ID: team.ID, Name: team.Name}, nil
}

// DeleteTeam removes the team's members and then the team, in that order.
// The store offers no cross-table transaction, so a failure between the two
// steps is surfaced as PARTIAL_FAILURE; retrying DeleteTeam finds the team
// with no members left and completes the second step.
func (d *DirectoryService) DeleteTeam(ctx context.Context, teamID string) *Error {
	l := logger.FromContext(ctx)

	if _, err := d.teams.Get(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("team not found", zap.String("team_id", teamID))
			return NewError(ErrorCodeNotFound, "team not found")
		}
		l.Error("failed to get team", zap.String("team_id", teamID), zap.Error(err))
		return NewError(ErrorCodeGateway, "failed to get team")
	}

	deleted, err := d.members.DeleteByTeam(ctx, teamID)
	if err != nil {
		l.Error("failed to delete team members", zap.String("team_id", teamID), zap.Error(err))
		return NewError(ErrorCodeGateway, "failed to delete team members")
	}

	if err = d.teams.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race with a concurrent delete; members are gone either way.
			l.Warn("team already deleted", zap.String("team_id", teamID))
			return NewError(ErrorCodeNotFound, "team not found")
		}
		l.Error("team delete failed after member cascade",
			zap.String("team_id", teamID),
			zap.Int("members_deleted", deleted),
			zap.Error(err))
		return NewError(ErrorCodePartialFailure, "members deleted but team remains, retry the delete")
	}

	l.Info("team deleted", zap.String("team_id", teamID), zap.Int("members_deleted", deleted))

	return nil
}

func (d *DirectoryService) AddMember(ctx context.Context, member *model.TeamMember) (*model.TeamMember, *Error) {
	l := logger.FromContext(ctx)

	member.Name = strings.TrimSpace(member.Name)
	if member.Name == "" {
		return nil, NewError(ErrorCodeValidation, "member name must not be empty")
	}
	if member.WeeklyTarget < 0 || member.MonthlyTarget < 0 {
		return nil, NewError(ErrorCodeValidation, "targets must not be negative")
	}

	if svcErr := d.checkTeamExists(ctx, member.TeamID); svcErr != nil {
		return nil, svcErr
	}

	created, err := d.members.Create(ctx, &repository.Member{
		Name:          member.Name,
		Email:         strings.TrimSpace(member.Email),
		TeamID:        member.TeamID,
		WeeklyTarget:  member.WeeklyTarget,
		MonthlyTarget: member.MonthlyTarget,
	})
	if err != nil {
		l.Error("failed to create member", zap.String("team_id", member.TeamID), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to create member")
	}

	l.Info("member added",
		zap.String("member_id", created.ID),
		zap.String("team_id", created.TeamID))

	return memberToModel(created), nil
}

func (d *DirectoryService) UpdateMember(ctx context.Context, memberID string, patch *model.MemberPatch) (*model.TeamMember, *Error) {
	l := logger.FromContext(ctx)

	if patch.Name == nil && patch.Email == nil && patch.TeamID == nil &&
		patch.WeeklyTarget == nil && patch.MonthlyTarget == nil {
		return nil, NewError(ErrorCodeValidation, "no fields to update")
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, NewError(ErrorCodeValidation, "member name must not be empty")
		}
		patch.Name = &trimmed
	}
	if patch.WeeklyTarget != nil && *patch.WeeklyTarget < 0 {
		return nil, NewError(ErrorCodeValidation, "weekly target must not be negative")
	}
	if patch.MonthlyTarget != nil && *patch.MonthlyTarget < 0 {
		return nil, NewError(ErrorCodeValidation, "monthly target must not be negative")
	}
	if patch.TeamID != nil {
		if svcErr := d.checkTeamExists(ctx, *patch.TeamID); svcErr != nil {
			return nil, svcErr
		}
	}

	updated, err := d.members.Patch(ctx, &repository.MemberPatch{
		ID:            memberID,
		Name:          patch.Name,
		Email:         patch.Email,
		TeamID:        patch.TeamID,
		WeeklyTarget:  patch.WeeklyTarget,
		MonthlyTarget: patch.MonthlyTarget,
	})
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("member not found", zap.String("member_id", memberID))
		return nil, NewError(ErrorCodeNotFound, "member not found")
	}
	if err != nil {
		l.Error("failed to update member", zap.String("member_id", memberID), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to update member")
	}

	l.Info("member updated", zap.String("member_id", memberID))

	return memberToModel(updated), nil
}

// ReassignMember moves a member to another team. Reassigning to the current
// team is reported as an unchanged success, not an error.
func (d *DirectoryService) ReassignMember(ctx context.Context, memberID, newTeamID string) (*model.ReassignResult, *Error) {
	l := logger.FromContext(ctx)

	member, err := d.members.Get(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("member not found", zap.String("member_id", memberID))
		return nil, NewError(ErrorCodeNotFound, "member not found")
	}
	if err != nil {
		l.Error("failed to get member", zap.String("member_id", memberID), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to get member")
	}

	if member.TeamID == newTeamID {
		l.Debug("member already in team",
			zap.String("member_id", memberID),
			zap.String("team_id", newTeamID))
		return &model.ReassignResult{Member: memberToModel(member), Changed: false}, nil
	}

	if svcErr := d.checkTeamExists(ctx, newTeamID); svcErr != nil {
		return nil, svcErr
	}

	updated, err := d.members.Patch(ctx, &repository.MemberPatch{
		ID:     memberID,
		TeamID: &newTeamID,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "member not found")
	}
	if err != nil {
		l.Error("failed to reassign member", zap.String("member_id", memberID), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to reassign member")
	}

	l.Info("member reassigned",
		zap.String("member_id", memberID),
		zap.String("team_id", newTeamID))

	return &model.ReassignResult{Member: memberToModel(updated), Changed: true}, nil
}

// DeleteMember removes the member record only. Leads recorded for the member
// are kept: historical counts stay in the reports.
func (d *DirectoryService) DeleteMember(ctx context.Context, memberID string) *Error {
	l := logger.FromContext(ctx)

	err := d.members.Delete(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("member not found", zap.String("member_id", memberID))
		return NewError(ErrorCodeNotFound, "member not found")
	}
	if err != nil {
		l.Error("failed to delete member", zap.String("member_id", memberID), zap.Error(err))
		return NewError(ErrorCodeGateway, "failed to delete member")
	}

	l.Info("member deleted", zap.String("member_id", memberID))

	return nil
}

// ListTeamsWithMembers joins teams and members in application code (the
// store has no joins). Teams without members appear with an empty list.
func (d *DirectoryService) ListTeamsWithMembers(ctx context.Context) ([]*model.TeamWithMembers, *Error) {
	l := logger.FromContext(ctx)

	teams, err := d.teams.List(ctx)
	if err != nil {
		l.Error("failed to list teams", zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to list teams")
	}

	members, err := d.members.List(ctx)
	if err != nil {
		l.Error("failed to list members", zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to list members")
	}

	byTeam := make(map[string][]*model.TeamMember, len(teams))
	for _, m := range members {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], memberToModel(m))
	}

	overview := make([]*model.TeamWithMembers, 0, len(teams))
	for _, team := range teams {
		teamMembers := byTeam[team.ID]
		if teamMembers == nil {
			teamMembers = make([]*model.TeamMember, 0)
		}
		sort.Slice(teamMembers, func(i, j int) bool {
			return teamMembers[i].Name < teamMembers[j].Name
		})
		overview = append(overview, &model.TeamWithMembers{
			ID:      team.ID,
			Name:    team.Name,
			Members: teamMembers,
		})
	}
	sort.Slice(overview, func(i, j int) bool {
		return overview[i].Name < overview[j].Name
	})

	return overview, nil
}

func (d *DirectoryService) checkTeamExists(ctx context.Context, teamID string) *Error {
	_, err := d.teams.Get(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeValidation, "team does not exist")
	}
	if err != nil {
		return NewError(ErrorCodeGateway, "failed to get team")
	}
	return nil
}

func memberToModel(m *repository.Member) *model.TeamMember {
	return &model.TeamMember{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		TeamID:        m.TeamID,
		WeeklyTarget:  m.WeeklyTarget,
		MonthlyTarget: m.MonthlyTarget,
	}
}

func (d *DirectoryService) WithTeamRepo(r repository.TeamRepository) *DirectoryService {
	d.teams = r
	return d
}

func (d *DirectoryService) WithMemberRepo(r repository.MemberRepository) *DirectoryService {
	d.members = r
	return d
}
