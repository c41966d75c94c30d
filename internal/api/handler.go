package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"leadboard/internal/model"
	"leadboard/internal/report"
	"leadboard/internal/service"
	"leadboard/pkg/logger"
)

const dateLayout = "2006-01-02"

type Handler struct {
	directory *service.DirectoryService
	ledger    *service.LedgerService
	dashboard *service.DashboardService

	healthChecker HealthChecker

	recentLeadsLimit int

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

// WithRecentLeadsLimit sets the dashboard default when no limit query
// parameter is given.
func (h *Handler) WithRecentLeadsLimit(n int) *Handler {
	h.recentLeadsLimit = n
	return h
}

func (h *Handler) WithDirectoryService(d *service.DirectoryService) *Handler {
	h.directory = d
	return h
}

func (h *Handler) WithLedgerService(l *service.LedgerService) *Handler {
	h.ledger = l
	return h
}

func (h *Handler) WithDashboardService(d *service.DashboardService) *Handler {
	h.dashboard = d
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", h.healthChecker.HealthCheck())

	e.GET("/dashboard", h.GetDashboard)

	e.GET("/teams", h.ListTeams)
	e.POST("/teams", h.CreateTeam)
	e.DELETE("/teams/:id", h.DeleteTeam)

	e.POST("/members", h.AddMember)
	e.PATCH("/members/:id", h.UpdateMember)
	e.POST("/members/:id/reassign", h.ReassignMember)
	e.DELETE("/members/:id", h.DeleteMember)

	e.POST("/leads", h.RecordLeads)
	e.POST("/leads/:id/convert", h.MarkConverted)
	e.GET("/leads", h.ListLeads)

	e.GET("/reports", h.GetReport)
	e.GET("/reports/export", h.ExportReport)
}

func (h *Handler) GetDashboard(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	limit := h.recentLeadsLimit
	if raw := e.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "limit must be an integer"))
		}
		limit = parsed
	}

	overview, err := h.dashboard.Overview(e.Request().Context(), limit)
	if err != nil {
		l.Error("failed to build dashboard", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, overview)
}

func (h *Handler) ListTeams(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	teams, err := h.directory.ListTeamsWithMembers(e.Request().Context())
	if err != nil {
		l.Error("failed to list teams", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, teams)
}

func (h *Handler) CreateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Name string `json:"team_name" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating team", zap.String("team_name", req.Name))

	team, err := h.directory.CreateTeam(e.Request().Context(), req.Name)
	if err != nil {
		l.Error("failed to create team", zap.String("team_name", req.Name), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, team)
}

func (h *Handler) DeleteTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	teamID := e.Param("id")

	l.Info("deleting team", zap.String("team_id", teamID))

	if err := h.directory.DeleteTeam(e.Request().Context(), teamID); err != nil {
		l.Error("failed to delete team", zap.String("team_id", teamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) AddMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Name          string `json:"name" validate:"required"`
		Email         string `json:"email"`
		TeamID        string `json:"team_id" validate:"required"`
		WeeklyTarget  int    `json:"weekly_target" validate:"gte=0"`
		MonthlyTarget int    `json:"monthly_target" validate:"gte=0"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("adding member",
		zap.String("name", req.Name),
		zap.String("team_id", req.TeamID))

	member, err := h.directory.AddMember(e.Request().Context(), &model.TeamMember{
		Name:          req.Name,
		Email:         req.Email,
		TeamID:        req.TeamID,
		WeeklyTarget:  req.WeeklyTarget,
		MonthlyTarget: req.MonthlyTarget,
	})
	if err != nil {
		l.Error("failed to add member", zap.String("team_id", req.TeamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, member)
}

func (h *Handler) UpdateMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	memberID := e.Param("id")

	patch := &model.MemberPatch{}
	if err := h.decodeRequest(e, patch); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("updating member", zap.String("member_id", memberID))

	member, err := h.directory.UpdateMember(e.Request().Context(), memberID, patch)
	if err != nil {
		l.Error("failed to update member", zap.String("member_id", memberID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, member)
}

func (h *Handler) ReassignMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	memberID := e.Param("id")

	var req struct {
		TeamID string `json:"team_id" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("reassigning member",
		zap.String("member_id", memberID),
		zap.String("team_id", req.TeamID))

	result, err := h.directory.ReassignMember(e.Request().Context(), memberID, req.TeamID)
	if err != nil {
		l.Error("failed to reassign member",
			zap.String("member_id", memberID),
			zap.String("team_id", req.TeamID),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	memberID := e.Param("id")

	l.Info("deleting member", zap.String("member_id", memberID))

	if err := h.directory.DeleteMember(e.Request().Context(), memberID); err != nil {
		l.Error("failed to delete member", zap.String("member_id", memberID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) RecordLeads(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		MemberID string `json:"member_id" validate:"required"`
		NumLeads int    `json:"num_leads" validate:"required,gte=1"`
		LeadDate string `json:"lead_date"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	leadDate, err := parseDate(req.LeadDate)
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "lead_date must be formatted YYYY-MM-DD"))
	}

	l.Info("recording leads",
		zap.String("member_id", req.MemberID),
		zap.Int("num_leads", req.NumLeads))

	lead, svcErr := h.ledger.RecordLeads(e.Request().Context(), req.MemberID, req.NumLeads, leadDate)
	if svcErr != nil {
		l.Error("failed to record leads", zap.String("member_id", req.MemberID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusCreated, lead)
}

func (h *Handler) MarkConverted(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	leadID := e.Param("id")

	var req struct {
		ConversionDate string `json:"conversion_date"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	conversionDate, err := parseDate(req.ConversionDate)
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "conversion_date must be formatted YYYY-MM-DD"))
	}

	l.Info("marking lead converted", zap.String("lead_id", leadID))

	lead, svcErr := h.ledger.MarkConverted(e.Request().Context(), leadID, conversionDate)
	if svcErr != nil {
		l.Error("failed to mark lead converted", zap.String("lead_id", leadID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, lead)
}

func (h *Handler) ListLeads(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	ctx := e.Request().Context()

	var leads []*model.Lead
	var err *service.Error
	if e.QueryParam("converted") == "false" {
		leads, err = h.ledger.ListUnconverted(ctx)
	} else {
		leads, err = h.ledger.ListAll(ctx)
	}
	if err != nil {
		l.Error("failed to list leads", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, leads)
}

func (h *Handler) GetReport(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	unit, err := report.ParseUnit(e.QueryParam("unit"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "unit must be week or month"))
	}

	rows, svcErr := h.dashboard.Report(e.Request().Context(), unit)
	if svcErr != nil {
		l.Error("failed to build report", zap.String("unit", string(unit)), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, rows)
}

func (h *Handler) ExportReport(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	unit, err := report.ParseUnit(e.QueryParam("unit"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "unit must be week or month"))
	}

	rows, svcErr := h.dashboard.Report(e.Request().Context(), unit)
	if svcErr != nil {
		l.Error("failed to export report", zap.String("unit", string(unit)), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	res := e.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="report.csv"`)
	res.WriteHeader(http.StatusOK)

	return report.WriteCSV(res, unit, rows)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "request validation failed: "+err.Error())
	}
	return nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	switch err.Code {
	case service.ErrorCodeValidation, service.ErrorCodeInvalidBody:
		return e.JSON(http.StatusBadRequest, response)
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeGateway:
		return e.JSON(http.StatusBadGateway, response)
	case service.ErrorCodePartialFailure:
		return e.JSON(http.StatusInternalServerError, response)
	default:
		return e.JSON(http.StatusInternalServerError, response)
	}
}
