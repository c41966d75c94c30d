package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"leadboard/internal/model"
	"leadboard/internal/repository"
	"leadboard/pkg/logger"
)

// LedgerService records daily lead counts and conversion transitions. Leads
// are never deleted; a lead whose member is gone stays in the ledger.
type LedgerService struct {
	members repository.MemberRepository
	leads   repository.LeadRepository
}

func NewLedgerService() *LedgerService {
	return &LedgerService{}
}

func (s *LedgerService) RecordLeads(ctx context.Context, memberID string, numLeads int, leadDate time.Time) (*model.Lead, *Error) {
	l := logger.FromContext(ctx)

	if numLeads < 1 {
		return nil, NewError(ErrorCodeValidation, "num_leads must be at least 1")
	}

	if _, err := s.members.Get(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("member not found", zap.String("member_id", memberID))
			return nil, NewError(ErrorCodeValidation, "member does not exist")
		}
		l.Error("failed to get member", zap.String("member_id", memberID), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to get member")
	}

	if leadDate.IsZero() {
		leadDate = today()
	}

	lead, err := s.leads.Create(ctx, &repository.Lead{
		MemberID: memberID,
		LeadDate: leadDate,
		NumLeads: numLeads,
	})
	if err != nil {
		l.Error("failed to record leads", zap.String("member_id", memberID), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to record leads")
	}

	l.Info("leads recorded",
		zap.String("lead_id", lead.ID),
		zap.String("member_id", memberID),
		zap.Int("num_leads", numLeads))

	return leadToModel(lead), nil
}

// MarkConverted flips a lead to converted and stamps the conversion date.
// Marking an already-converted lead is a no-op that returns the current
// record; the store has no unique-transition guarantee to lean on.
func (s *LedgerService) MarkConverted(ctx context.Context, leadID string, conversionDate time.Time) (*model.Lead, *Error) {
	l := logger.FromContext(ctx)

	lead, err := s.leads.Get(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("lead not found", zap.String("lead_id", leadID))
		return nil, NewError(ErrorCodeNotFound, "lead not found")
	}
	if err != nil {
		l.Error("failed to get lead", zap.String("lead_id", leadID), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to get lead")
	}

	if lead.Converted {
		l.Debug("lead already converted", zap.String("lead_id", leadID))
		return leadToModel(lead), nil
	}

	if conversionDate.IsZero() {
		conversionDate = today()
	}

	updated, err := s.leads.MarkConverted(ctx, leadID, conversionDate)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "lead not found")
	}
	if err != nil {
		l.Error("failed to mark lead converted", zap.String("lead_id", leadID), zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to mark lead converted")
	}

	l.Info("lead converted", zap.String("lead_id", leadID))

	return leadToModel(updated), nil
}

func (s *LedgerService) ListUnconverted(ctx context.Context) ([]*model.Lead, *Error) {
	leads, err := s.leads.ListUnconverted(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list unconverted leads", zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to list unconverted leads")
	}
	return leadsToModel(leads), nil
}

func (s *LedgerService) ListAll(ctx context.Context) ([]*model.Lead, *Error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list leads", zap.Error(err))
		return nil, NewError(ErrorCodeGateway, "failed to list leads")
	}
	return leadsToModel(leads), nil
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func leadToModel(lead *repository.Lead) *model.Lead {
	return &model.Lead{
		ID:             lead.ID,
		MemberID:       lead.MemberID,
		LeadDate:       lead.LeadDate,
		NumLeads:       lead.NumLeads,
		Converted:      lead.Converted,
		ConversionDate: lead.ConversionDate,
		CreatedAt:      lead.CreatedAt,
	}
}

func leadsToModel(leads []*repository.Lead) []*model.Lead {
	out := make([]*model.Lead, 0, len(leads))
	for _, lead := range leads {
		out = append(out, leadToModel(lead))
	}
	return out
}

func (s *LedgerService) WithMemberRepo(r repository.MemberRepository) *LedgerService {
	s.members = r
	return s
}

func (s *LedgerService) WithLeadRepo(r repository.LeadRepository) *LedgerService {
	s.leads = r
	return s
}
