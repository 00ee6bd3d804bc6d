package salarytemplate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/salaryengine"
	salaryengineerrors "go-payroll/internal/salaryengine/errors"
	salarytemplateerrors "go-payroll/internal/salarytemplate/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogProvider supplies the company's component catalog; it is
// implemented by salarycomponent.Service.
type CatalogProvider interface {
	Catalog(ctx context.Context, companyID string) (salaryengine.Catalog, error)
}

// TemplateAllocation is the result of applying a stored template to a CTC
// other than the template's own.
type TemplateAllocation struct {
	TemplateID   string
	TemplateName string
	Status       string
	Result       salaryengine.Result
}

//go:generate mockgen -source=salary_template_service.go -destination=mock/salary_template_service_mock.go -package=mock
type Service interface {
	// Preview allocates without persisting anything.
	Preview(ctx context.Context, companyID string, req PreviewRequest) (AllocationResponse, error)
	Create(ctx context.Context, companyID, actorID string, req SaveSalaryTemplateRequest) (SalaryTemplateResponse, error)
	Update(ctx context.Context, companyID, actorID, id string, req SaveSalaryTemplateRequest) (SalaryTemplateResponse, error)
	GetAll(ctx context.Context, companyID string, filter GetSalaryTemplatesFilter) ([]SalaryTemplateResponse, error)
	GetByID(ctx context.Context, companyID, id string) (SalaryTemplateResponse, error)
	Delete(ctx context.Context, companyID, actorID, id string) error
	Export(ctx context.Context, companyID, id string) (ExportFile, error)
	AllocateCTC(ctx context.Context, companyID, id string, annualCTC decimal.Decimal) (TemplateAllocation, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	catalog CatalogProvider
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(db *sql.DB, repo Repository, catalog CatalogProvider, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, catalog, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	catalog CatalogProvider,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("salarytemplate.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarytemplate.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		catalog: catalog,
		outbox:  outboxRepo,
		logger:  l,
		now:     time.Now,
	}
}

func (s *service) Preview(
	ctx context.Context,
	companyID string,
	req PreviewRequest,
) (AllocationResponse, error) {
	ctc, err := salaryengine.ParseCTC(string(req.AnnualCTC))
	if err != nil {
		return AllocationResponse{}, err
	}

	result, err := s.allocate(ctx, companyID, ctc, toEngineMappings(req.Mappings))
	if err != nil {
		return AllocationResponse{}, err
	}

	return toAllocationResponse(result), nil
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req SaveSalaryTemplateRequest,
) (SalaryTemplateResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	companyUUID, actorUUID, err := parseTenantAndActor(companyID, actorID)
	if err != nil {
		return SalaryTemplateResponse{}, err
	}

	result, err := s.allocateForSave(ctx, companyID, req)
	if err != nil {
		return SalaryTemplateResponse{}, err
	}

	templateID := uuid.New()
	template := &SalaryTemplate{
		ID:          templateID,
		CompanyID:   companyUUID,
		Name:        strings.TrimSpace(req.Template.Name),
		Description: req.Template.Description,
		AnnualCTC:   result.AnnualCTC,
		Status:      statusOrDefault(req.Template.Status, StatusActive),
		CreatedBy:   actorUUID,
		Mappings:    buildMappingRows(templateID, companyUUID, req.Mappings, result),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryTemplateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Create(ctx, template); err != nil {
		log.Warn("create salary template failed", zap.String("company_id", companyID), zap.Error(err))
		return SalaryTemplateResponse{}, mapRepositoryError(err)
	}

	if err := s.writeChangedEvent(ctx, tx, template.ID.String(), companyID, actorID, events.SalaryTemplateCreated); err != nil {
		return SalaryTemplateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return SalaryTemplateResponse{}, err
	}

	log.Info("salary template created",
		zap.String("company_id", companyID),
		zap.String("template_id", template.ID.String()),
		zap.String("annual_ctc", result.AnnualCTC.StringFixed(2)),
		zap.Int("warnings", len(result.Warnings)),
	)

	return toTemplateResponse(*template, result), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, actorID, id string,
	req SaveSalaryTemplateRequest,
) (SalaryTemplateResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return SalaryTemplateResponse{}, salarytemplateerrors.ErrInvalidSalaryTemplateID
	}
	companyUUID, _, err := parseTenantAndActor(companyID, actorID)
	if err != nil {
		return SalaryTemplateResponse{}, err
	}

	result, err := s.allocateForSave(ctx, companyID, req)
	if err != nil {
		return SalaryTemplateResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryTemplateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	template, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SalaryTemplateResponse{}, mapRepositoryError(err)
	}

	template.Name = strings.TrimSpace(req.Template.Name)
	template.Description = req.Template.Description
	template.AnnualCTC = result.AnnualCTC
	template.Status = statusOrDefault(req.Template.Status, template.Status)

	if err := qtx.Update(ctx, template); err != nil {
		return SalaryTemplateResponse{}, mapRepositoryError(err)
	}

	rows := buildMappingRows(template.ID, companyUUID, req.Mappings, result)
	if err := qtx.ReplaceMappings(ctx, template.ID, rows); err != nil {
		return SalaryTemplateResponse{}, err
	}
	template.Mappings = rows

	if err := s.writeChangedEvent(ctx, tx, template.ID.String(), companyID, actorID, events.SalaryTemplateUpdated); err != nil {
		return SalaryTemplateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return SalaryTemplateResponse{}, err
	}

	log.Info("salary template updated",
		zap.String("company_id", companyID),
		zap.String("template_id", template.ID.String()),
		zap.Int("warnings", len(result.Warnings)),
	)

	return toTemplateResponse(*template, result), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
	filter GetSalaryTemplatesFilter,
) ([]SalaryTemplateResponse, error) {
	templates, err := s.repo.FindAllByCompany(ctx, companyID, filter.Status)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(filter.Q))
	resp := make([]SalaryTemplateResponse, 0, len(templates))
	for _, t := range templates {
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) {
			continue
		}
		resp = append(resp, toListResponse(t))
	}

	return resp, nil
}

// GetByID re-runs the allocation on the stored mappings so the breakdown
// reflects the current catalog roles and names.
func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (SalaryTemplateResponse, error) {
	template, result, err := s.loadAllocated(ctx, companyID, id)
	if err != nil {
		return SalaryTemplateResponse{}, err
	}
	return toTemplateResponse(*template, result), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, actorID, id string,
) error {
	if _, err := uuid.Parse(id); err != nil {
		return salarytemplateerrors.ErrInvalidSalaryTemplateID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	assigned, err := qtx.CountAssignments(ctx, companyID, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return salarytemplateerrors.ErrSalaryTemplateInUse
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := s.writeChangedEvent(ctx, tx, id, companyID, actorID, events.SalaryTemplateDeleted); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) Export(
	ctx context.Context,
	companyID, id string,
) (ExportFile, error) {
	template, result, err := s.loadAllocated(ctx, companyID, id)
	if err != nil {
		return ExportFile{}, err
	}

	content, err := renderTemplateWorkbook(*template, result)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("render salary template workbook failed",
			zap.String("template_id", id),
			zap.Error(err),
		)
		return ExportFile{}, err
	}

	return ExportFile{
		FileName: exportFileName(template.Name, s.now()),
		Content:  content,
	}, nil
}

func (s *service) AllocateCTC(
	ctx context.Context,
	companyID, id string,
	annualCTC decimal.Decimal,
) (TemplateAllocation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TemplateAllocation{}, salarytemplateerrors.ErrInvalidSalaryTemplateID
	}

	template, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return TemplateAllocation{}, mapRepositoryError(err)
	}

	result, err := s.allocate(ctx, companyID, annualCTC, storedToEngineMappings(template.Mappings))
	if err != nil {
		return TemplateAllocation{}, err
	}

	return TemplateAllocation{
		TemplateID:   template.ID.String(),
		TemplateName: template.Name,
		Status:       template.Status,
		Result:       result,
	}, nil
}

func (s *service) loadAllocated(ctx context.Context, companyID, id string) (*SalaryTemplate, salaryengine.Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, salaryengine.Result{}, salarytemplateerrors.ErrInvalidSalaryTemplateID
	}

	template, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return nil, salaryengine.Result{}, mapRepositoryError(err)
	}

	result, err := s.allocate(ctx, companyID, template.AnnualCTC, storedToEngineMappings(template.Mappings))
	if err != nil {
		return nil, salaryengine.Result{}, err
	}

	return template, result, nil
}

func (s *service) allocate(
	ctx context.Context,
	companyID string,
	ctc decimal.Decimal,
	mappings []salaryengine.Mapping,
) (salaryengine.Result, error) {
	catalog, err := s.catalog.Catalog(ctx, companyID)
	if err != nil {
		return salaryengine.Result{}, err
	}

	return salaryengine.Allocate(salaryengine.Request{
		AnnualCTC: ctc,
		Mappings:  mappings,
		Catalog:   catalog,
	})
}

// allocateForSave runs the engine for a create or update. Invalid mappings
// block the save because their values cannot be stored; every other warning
// is saved through and returned to the caller.
func (s *service) allocateForSave(
	ctx context.Context,
	companyID string,
	req SaveSalaryTemplateRequest,
) (salaryengine.Result, error) {
	if strings.TrimSpace(req.Template.Name) == "" {
		return salaryengine.Result{}, apperror.RequiredField("name")
	}
	if len(req.Mappings) == 0 {
		return salaryengine.Result{}, salarytemplateerrors.ErrEmptyMappings
	}

	ctc, err := salaryengine.ParseCTC(string(req.Template.AnnualCTC))
	if err != nil {
		return salaryengine.Result{}, err
	}

	result, err := s.allocate(ctx, companyID, ctc, toEngineMappings(req.Mappings))
	if err != nil {
		return salaryengine.Result{}, err
	}

	if err := rejectInvalidMappings(result); err != nil {
		return salaryengine.Result{}, err
	}

	return result, nil
}

func (s *service) writeChangedEvent(
	ctx context.Context,
	tx *sql.Tx,
	templateID, companyID, actorID, action string,
) error {
	if s.outbox == nil {
		return nil
	}

	event := events.SalaryTemplateChangedEvent{
		EventType:  events.SalaryTemplateChangedEventType,
		TemplateID: templateID,
		CompanyID:  companyID,
		Action:     action,
		ChangedBy:  actorID,
		OccurredAt: s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "salary_template",
		AggregateID:   templateID,
		EventType:     event.EventType,
		Topic:         events.SalaryTemplateChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("persist salary template outbox event failed",
			zap.String("template_id", templateID),
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func rejectInvalidMappings(result salaryengine.Result) error {
	var msgs []string
	for _, w := range result.Warnings {
		if w.Kind == salaryengine.WarningInvalidMapping {
			msgs = append(msgs, fmt.Sprintf("row %d: %s", w.Index+1, w.Message))
		}
	}
	if len(msgs) == 0 {
		return nil
	}

	return apperror.Wrap(
		errors.New(strings.Join(msgs, "; ")),
		salaryengineerrors.ErrInvalidMapping.Code,
		salaryengineerrors.ErrInvalidMapping.Message,
		salaryengineerrors.ErrInvalidMapping.HTTPStatus,
	)
}

func parseTenantAndActor(companyID, actorID string) (uuid.UUID, uuid.UUID, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, salarytemplateerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, salarytemplateerrors.ErrInvalidActorID
	}
	return companyUUID, actorUUID, nil
}

func statusOrDefault(status, fallback string) string {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == StatusActive || status == StatusInactive {
		return status
	}
	return fallback
}
