package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"leadboard/internal/model"
	"leadboard/internal/repository"
)

func TestDirectoryService_CreateTeam(t *testing.T) {
	tests := []struct {
		name          string
		teamName      string
		setupMocks    func(*MockTeamRepository)
		expectedError bool
		errorCode     ErrorCode
		expectedTeam  *model.Team
	}{
		{
			name:     "success",
			teamName: "Alpha",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Create", mock.Anything, "Alpha").
					Return(&repository.Team{ID: "team1", Name: "Alpha"}, nil)
			},
			expectedError: false,
			expectedTeam:  &model.Team{ID: "team1", Name: "Alpha"},
		},
		{
			name:     "name trimmed before insert",
			teamName: "  Alpha  ",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Create", mock.Anything, "Alpha").
					Return(&repository.Team{ID: "team1", Name: "Alpha"}, nil)
			},
			expectedError: false,
			expectedTeam:  &model.Team{ID: "team1", Name: "Alpha"},
		},
		{
			name:          "empty name",
			teamName:      "   ",
			setupMocks:    func(tr *MockTeamRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:     "store failure",
			teamName: "Alpha",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Create", mock.Anything, "Alpha").Return(nil, errors.New("connection reset"))
			},
			expectedError: true,
			errorCode:     ErrorCodeGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTeamRepo := new(MockTeamRepository)
			tt.setupMocks(mockTeamRepo)

			service := NewDirectoryService().WithTeamRepo(mockTeamRepo)

			got, err := service.CreateTeam(context.Background(), tt.teamName)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.expectedTeam, got)
			}

			mockTeamRepo.AssertExpectations(t)
		})
	}
}

func TestDirectoryService_DeleteTeam(t *testing.T) {
	tests := []struct {
		name          string
		teamID        string
		setupMocks    func(*MockTeamRepository, *MockMemberRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:   "success",
			teamID: "team1",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "team1").Return(&repository.Team{ID: "team1", Name: "Alpha"}, nil)
				mr.On("DeleteByTeam", mock.Anything, "team1").Return(2, nil)
				tr.On("Delete", mock.Anything, "team1").Return(nil)
			},
			expectedError: false,
		},
		{
			name:   "team not found",
			teamID: "missing",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:   "member cascade failure leaves everything in place",
			teamID: "team1",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "team1").Return(&repository.Team{ID: "team1", Name: "Alpha"}, nil)
				mr.On("DeleteByTeam", mock.Anything, "team1").Return(0, errors.New("connection reset"))
			},
			expectedError: true,
			errorCode:     ErrorCodeGateway,
		},
		{
			name:   "team delete failure after cascade is partial",
			teamID: "team1",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "team1").Return(&repository.Team{ID: "team1", Name: "Alpha"}, nil)
				mr.On("DeleteByTeam", mock.Anything, "team1").Return(2, nil)
				tr.On("Delete", mock.Anything, "team1").Return(errors.New("connection reset"))
			},
			expectedError: true,
			errorCode:     ErrorCodePartialFailure,
		},
		{
			name:   "retry after partial failure completes the delete",
			teamID: "team1",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "team1").Return(&repository.Team{ID: "team1", Name: "Alpha"}, nil)
				// Members already gone from the first attempt.
				mr.On("DeleteByTeam", mock.Anything, "team1").Return(0, nil)
				tr.On("Delete", mock.Anything, "team1").Return(nil)
			},
			expectedError: false,
		},
		{
			name:   "concurrent delete resolves to not found",
			teamID: "team1",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "team1").Return(&repository.Team{ID: "team1", Name: "Alpha"}, nil)
				mr.On("DeleteByTeam", mock.Anything, "team1").Return(0, nil)
				tr.On("Delete", mock.Anything, "team1").Return(repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTeamRepo := new(MockTeamRepository)
			mockMemberRepo := new(MockMemberRepository)
			tt.setupMocks(mockTeamRepo, mockMemberRepo)

			service := NewDirectoryService().
				WithTeamRepo(mockTeamRepo).
				WithMemberRepo(mockMemberRepo)

			err := service.DeleteTeam(context.Background(), tt.teamID)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				assert.Nil(t, err)
			}

			mockTeamRepo.AssertExpectations(t)
			mockMemberRepo.AssertExpectations(t)
		})
	}
}

func TestDirectoryService_AddMember(t *testing.T) {
	tests := []struct {
		name          string
		member        *model.TeamMember
		setupMocks    func(*MockTeamRepository, *MockMemberRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name: "success",
			member: &model.TeamMember{
				Name:          "Jane",
				Email:         "jane@example.com",
				TeamID:        "team1",
				WeeklyTarget:  10,
				MonthlyTarget: 40,
			},
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "team1").Return(&repository.Team{ID: "team1", Name: "Alpha"}, nil)
				mr.On("Create", mock.Anything, mock.MatchedBy(func(m *repository.Member) bool {
					return m.Name == "Jane" && m.TeamID == "team1" && m.WeeklyTarget == 10
				})).Return(&repository.Member{
					ID:            "member1",
					Name:          "Jane",
					Email:         "jane@example.com",
					TeamID:        "team1",
					WeeklyTarget:  10,
					MonthlyTarget: 40,
				}, nil)
			},
			expectedError: false,
		},
		{
			name:          "empty name",
			member:        &model.TeamMember{Name: "  ", TeamID: "team1"},
			setupMocks:    func(tr *MockTeamRepository, mr *MockMemberRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:          "negative target",
			member:        &model.TeamMember{Name: "Jane", TeamID: "team1", WeeklyTarget: -1},
			setupMocks:    func(tr *MockTeamRepository, mr *MockMemberRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			// No insert happens when the referenced team is missing.
			name:   "unknown team",
			member: &model.TeamMember{Name: "Jane", TeamID: "ghost"},
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTeamRepo := new(MockTeamRepository)
			mockMemberRepo := new(MockMemberRepository)
			tt.setupMocks(mockTeamRepo, mockMemberRepo)

			service := NewDirectoryService().
				WithTeamRepo(mockTeamRepo).
				WithMemberRepo(mockMemberRepo)

			got, err := service.AddMember(context.Background(), tt.member)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.NotEmpty(t, got.ID)
			}

			mockTeamRepo.AssertExpectations(t)
			mockMemberRepo.AssertExpectations(t)
		})
	}
}

func TestDirectoryService_UpdateMember(t *testing.T) {
	newName := "Janet"
	ghostTeam := "ghost"
	negative := -5

	tests := []struct {
		name          string
		memberID      string
		patch         *model.MemberPatch
		setupMocks    func(*MockTeamRepository, *MockMemberRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:     "rename",
			memberID: "member1",
			patch:    &model.MemberPatch{Name: &newName},
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				mr.On("Patch", mock.Anything, mock.MatchedBy(func(p *repository.MemberPatch) bool {
					return p.ID == "member1" && p.Name != nil && *p.Name == "Janet"
				})).Return(&repository.Member{ID: "member1", Name: "Janet", TeamID: "team1"}, nil)
			},
		},
		{
			name:          "empty patch",
			memberID:      "member1",
			patch:         &model.MemberPatch{},
			setupMocks:    func(tr *MockTeamRepository, mr *MockMemberRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:          "negative target",
			memberID:      "member1",
			patch:         &model.MemberPatch{WeeklyTarget: &negative},
			setupMocks:    func(tr *MockTeamRepository, mr *MockMemberRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:     "unknown team",
			memberID: "member1",
			patch:    &model.MemberPatch{TeamID: &ghostTeam},
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
		{
			name:     "member not found",
			memberID: "ghost",
			patch:    &model.MemberPatch{Name: &newName},
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				mr.On("Patch", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTeamRepo := new(MockTeamRepository)
			mockMemberRepo := new(MockMemberRepository)
			tt.setupMocks(mockTeamRepo, mockMemberRepo)

			service := NewDirectoryService().
				WithTeamRepo(mockTeamRepo).
				WithMemberRepo(mockMemberRepo)

			got, err := service.UpdateMember(context.Background(), tt.memberID, tt.patch)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, "Janet", got.Name)
			}

			mockTeamRepo.AssertExpectations(t)
			mockMemberRepo.AssertExpectations(t)
		})
	}
}

func TestDirectoryService_ReassignMember(t *testing.T) {
	tests := []struct {
		name            string
		memberID        string
		newTeamID       string
		setupMocks      func(*MockTeamRepository, *MockMemberRepository)
		expectedError   bool
		errorCode       ErrorCode
		expectedChanged bool
	}{
		{
			name:      "moved to another team",
			memberID:  "member1",
			newTeamID: "team2",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				mr.On("Get", mock.Anything, "member1").
					Return(&repository.Member{ID: "member1", Name: "Jane", TeamID: "team1"}, nil)
				tr.On("Get", mock.Anything, "team2").Return(&repository.Team{ID: "team2", Name: "Beta"}, nil)
				mr.On("Patch", mock.Anything, mock.MatchedBy(func(p *repository.MemberPatch) bool {
					return p.ID == "member1" && p.TeamID != nil && *p.TeamID == "team2" && p.Name == nil
				})).Return(&repository.Member{ID: "member1", Name: "Jane", TeamID: "team2"}, nil)
			},
			expectedChanged: true,
		},
		{
			// Same team is a success variant, not an error, and writes nothing.
			name:      "already in this team",
			memberID:  "member1",
			newTeamID: "team1",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				mr.On("Get", mock.Anything, "member1").
					Return(&repository.Member{ID: "member1", Name: "Jane", TeamID: "team1"}, nil)
			},
			expectedChanged: false,
		},
		{
			name:      "member not found",
			memberID:  "ghost",
			newTeamID: "team2",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				mr.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:      "target team does not exist",
			memberID:  "member1",
			newTeamID: "ghost",
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				mr.On("Get", mock.Anything, "member1").
					Return(&repository.Member{ID: "member1", Name: "Jane", TeamID: "team1"}, nil)
				tr.On("Get", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTeamRepo := new(MockTeamRepository)
			mockMemberRepo := new(MockMemberRepository)
			tt.setupMocks(mockTeamRepo, mockMemberRepo)

			service := NewDirectoryService().
				WithTeamRepo(mockTeamRepo).
				WithMemberRepo(mockMemberRepo)

			got, err := service.ReassignMember(context.Background(), tt.memberID, tt.newTeamID)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.expectedChanged, got.Changed)
			}

			mockTeamRepo.AssertExpectations(t)
			mockMemberRepo.AssertExpectations(t)
		})
	}
}

func TestDirectoryService_ListTeamsWithMembers(t *testing.T) {
	mockTeamRepo := new(MockTeamRepository)
	mockMemberRepo := new(MockMemberRepository)

	mockTeamRepo.On("List", mock.Anything).Return([]*repository.Team{
		{ID: "team2", Name: "Beta"},
		{ID: "team1", Name: "Alpha"},
	}, nil)
	mockMemberRepo.On("List", mock.Anything).Return([]*repository.Member{
		{ID: "m2", Name: "Zoe", TeamID: "team1"},
		{ID: "m1", Name: "Jane", TeamID: "team1"},
	}, nil)

	service := NewDirectoryService().
		WithTeamRepo(mockTeamRepo).
		WithMemberRepo(mockMemberRepo)

	got, err := service.ListTeamsWithMembers(context.Background())
	assert.Nil(t, err)
	assert.Len(t, got, 2)

	// Teams sorted by name; members sorted by name inside the team.
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, []string{"Jane", "Zoe"}, []string{got[0].Members[0].Name, got[0].Members[1].Name})

	// Beta has no members but still shows up with an empty list.
	assert.Equal(t, "Beta", got[1].Name)
	assert.NotNil(t, got[1].Members)
	assert.Empty(t, got[1].Members)

	mockTeamRepo.AssertExpectations(t)
	mockMemberRepo.AssertExpectations(t)
}

func TestDirectoryService_DeleteMember(t *testing.T) {
	mockMemberRepo := new(MockMemberRepository)
	mockMemberRepo.On("Delete", mock.Anything, "ghost").Return(repository.ErrNotFound)

	service := NewDirectoryService().WithMemberRepo(mockMemberRepo)

	err := service.DeleteMember(context.Background(), "ghost")
	assert.NotNil(t, err)
	assert.Equal(t, ErrorCodeNotFound, err.Code)

	mockMemberRepo.AssertExpectations(t)
}
