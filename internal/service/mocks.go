package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"leadboard/internal/repository"
)

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, name string) (*repository.Team, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) Get(ctx context.Context, id string) (*repository.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) List(ctx context.Context) ([]*repository.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *repository.Member) (*repository.Member, error) {
	args := m.Called(ctx, member)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Member), args.Error(1)
}

func (m *MockMemberRepository) Get(ctx context.Context, id string) (*repository.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context) ([]*repository.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Member), args.Error(1)
}

func (m *MockMemberRepository) ListByTeam(ctx context.Context, teamID string) ([]*repository.Member, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Member), args.Error(1)
}

func (m *MockMemberRepository) Patch(ctx context.Context, patch *repository.MemberPatch) (*repository.Member, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Member), args.Error(1)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemberRepository) DeleteByTeam(ctx context.Context, teamID string) (int, error) {
	args := m.Called(ctx, teamID)
	return args.Int(0), args.Error(1)
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *repository.Lead) (*repository.Lead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Lead), args.Error(1)
}

func (m *MockLeadRepository) Get(ctx context.Context, id string) (*repository.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context) ([]*repository.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListUnconverted(ctx context.Context) ([]*repository.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Lead), args.Error(1)
}

func (m *MockLeadRepository) MarkConverted(ctx context.Context, id string, conversionDate time.Time) (*repository.Lead, error) {
	args := m.Called(ctx, id, conversionDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Lead), args.Error(1)
}
