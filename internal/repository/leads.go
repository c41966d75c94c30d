package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadboard/internal/gateway"
)

const leadsTable = "leads"

type Lead struct {
	ID             string
	MemberID       string
	LeadDate       time.Time
	NumLeads       int
	Converted      bool
	ConversionDate *time.Time
	CreatedAt      time.Time
}

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	Get(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context) ([]*Lead, error)
	ListUnconverted(ctx context.Context) ([]*Lead, error)
	MarkConverted(ctx context.Context, id string, conversionDate time.Time) (*Lead, error)
}

type leadRepository struct {
	store gateway.TableGateway
}

func NewLeadRepository(store gateway.TableGateway) LeadRepository {
	return &leadRepository{store: store}
}

func (r *leadRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	rec, err := r.store.Insert(ctx, leadsTable, gateway.Record{
		"id":         uuid.NewString(),
		"member_id":  lead.MemberID,
		"lead_date":  lead.LeadDate,
		"num_leads":  lead.NumLeads,
		"converted":  false,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return leadFromRecord(rec), nil
}

func (r *leadRepository) Get(ctx context.Context, id string) (*Lead, error) {
	recs, err := r.store.Select(ctx, leadsTable, gateway.Filters{"id": id})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return leadFromRecord(recs[0]), nil
}

func (r *leadRepository) List(ctx context.Context) ([]*Lead, error) {
	return r.selectLeads(ctx, nil)
}

func (r *leadRepository) ListUnconverted(ctx context.Context) ([]*Lead, error) {
	return r.selectLeads(ctx, gateway.Filters{"converted": false})
}

func (r *leadRepository) MarkConverted(ctx context.Context, id string, conversionDate time.Time) (*Lead, error) {
	affected, err := r.store.Update(ctx, leadsTable, gateway.Record{
		"converted":       true,
		"conversion_date": conversionDate,
	}, gateway.Filters{"id": id})
	if err != nil {
		return nil, err
	}
	if len(affected) == 0 {
		return nil, ErrNotFound
	}
	return leadFromRecord(affected[0]), nil
}

func (r *leadRepository) selectLeads(ctx context.Context, filters gateway.Filters) ([]*Lead, error) {
	recs, err := r.store.Select(ctx, leadsTable, filters)
	if err != nil {
		return nil, err
	}

	leads := make([]*Lead, 0, len(recs))
	for _, rec := range recs {
		leads = append(leads, leadFromRecord(rec))
	}
	return leads, nil
}

func leadFromRecord(rec gateway.Record) *Lead {
	return &Lead{
		ID:             asString(rec["id"]),
		MemberID:       asString(rec["member_id"]),
		LeadDate:       asTime(rec["lead_date"]),
		NumLeads:       asInt(rec["num_leads"]),
		Converted:      asBool(rec["converted"]),
		ConversionDate: asTimePtr(rec["conversion_date"]),
		CreatedAt:      asTime(rec["created_at"]),
	}
}
