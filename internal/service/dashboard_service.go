package service

import (
	"context"

	"go.uber.org/zap"

	"leadboard/internal/model"
	"leadboard/internal/report"
	"leadboard/internal/repository"
	"leadboard/pkg/logger"
)

// Overview is the dashboard payload: totals plus the most recent leads.
type Overview struct {
	Summary report.Summary `json:"summary"`
	Recent  []*model.Lead  `json:"recent_leads"`
}

// DashboardService reads the full lead collection and derives metrics with
// the report package. All grouping happens client-side.
type DashboardService struct {
	leads repository.LeadRepository
}

func NewDashboardService() *DashboardService {
	return &DashboardService{}
}

func (s *DashboardService) Overview(ctx context.Context, limit int) (*Overview, *Error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list leads", zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to list leads")
	}

	modelLeads := leadsToModel(leads)

	return &Overview{
		Summary: report.BuildSummary(modelLeads),
		Recent:  report.RecentLeads(modelLeads, limit),
	}, nil
}

func (s *DashboardService) Report(ctx context.Context, unit report.PeriodUnit) ([]report.PeriodRow, *Error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list leads", zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to list leads")
	}

	return report.GroupByPeriod(leadsToModel(leads), unit), nil
}

func (s *DashboardService) WithLeadRepo(r repository.LeadRepository) *DashboardService {
	s.leads = r
	return s
}
