package salarycomponent

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"go-payroll/internal/salaryengine"
	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	CatalogKeyPrefix = "salary-components:catalog:"
	catalogTTL       = time.Hour
)

func GetCatalogKey(companyID string) string {
	return CatalogKeyPrefix + companyID
}

//go:generate mockgen -source=salary_component_service.go -destination=mock/salary_component_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateSalaryComponentRequest) (SalaryComponentResponse, error)
	GetAll(ctx context.Context, companyID string) ([]SalaryComponentResponse, error)
	GetByID(ctx context.Context, companyID string, id int64) (SalaryComponentResponse, error)
	Update(ctx context.Context, companyID string, id int64, req UpdateSalaryComponentRequest) (SalaryComponentResponse, error)
	Delete(ctx context.Context, companyID string, id int64) error
	// Catalog returns every component of the company in the shape the
	// allocation engine resolves roles from.
	Catalog(ctx context.Context, companyID string) (salaryengine.Catalog, error)
	Import(ctx context.Context, companyID string, items []ImportItem) (ImportResult, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("salarycomponent.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarycomponent.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateSalaryComponentRequest,
) (SalaryComponentResponse, error) {
	companyUUID, err := parseCompanyID(companyID)
	if err != nil {
		return SalaryComponentResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return SalaryComponentResponse{}, apperror.RequiredField("name")
	}

	role, err := resolveRole(name, req.Role)
	if err != nil {
		return SalaryComponentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryComponentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	component := &SalaryComponent{
		CompanyID:   companyUUID,
		Name:        name,
		Code:        strings.TrimSpace(req.Code),
		Role:        role,
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}

	if err := qtx.Create(ctx, component); err != nil {
		return SalaryComponentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return SalaryComponentResponse{}, err
	}

	s.invalidateCatalog(ctx, companyID)
	s.logger.Info("salary component created",
		zap.String("company_id", companyID),
		zap.Int64("component_id", component.ID),
		zap.String("role", role),
	)

	return mapToResponse(*component), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]SalaryComponentResponse, error) {
	cacheKey := GetCatalogKey(companyID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp []SalaryComponentResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		components, err := s.repo.FindAllByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(components)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, catalogTTL).Err(); err != nil {
					s.logger.Warn("cache salary component catalog failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]SalaryComponentResponse), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID string,
	id int64,
) (SalaryComponentResponse, error) {
	if id <= 0 {
		return SalaryComponentResponse{}, salarycomponenterrors.ErrInvalidSalaryComponentID
	}

	component, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SalaryComponentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*component), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID string,
	id int64,
	req UpdateSalaryComponentRequest,
) (SalaryComponentResponse, error) {
	if id <= 0 {
		return SalaryComponentResponse{}, salarycomponenterrors.ErrInvalidSalaryComponentID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return SalaryComponentResponse{}, apperror.RequiredField("name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryComponentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	component, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return SalaryComponentResponse{}, mapRepositoryError(err)
	}

	role := component.Role
	if req.Role != "" {
		if role, err = resolveRole(name, req.Role); err != nil {
			return SalaryComponentResponse{}, err
		}
	}

	component.Name = name
	component.Code = strings.TrimSpace(req.Code)
	component.Role = role
	component.Description = req.Description
	if req.IsActive != nil {
		component.IsActive = *req.IsActive
	}

	if err := qtx.Update(ctx, component); err != nil {
		return SalaryComponentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return SalaryComponentResponse{}, err
	}

	s.invalidateCatalog(ctx, companyID)

	return mapToResponse(*component), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID string,
	id int64,
) error {
	if id <= 0 {
		return salarycomponenterrors.ErrInvalidSalaryComponentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateCatalog(ctx, companyID)

	return nil
}

func (s *service) Catalog(ctx context.Context, companyID string) (salaryengine.Catalog, error) {
	components, err := s.GetAll(ctx, companyID)
	if err != nil {
		return nil, err
	}

	catalog := make(salaryengine.Catalog, len(components))
	for i, c := range components {
		catalog[i] = salaryengine.Component{
			ID:   c.ID,
			Name: c.Name,
			Role: salaryengine.Role(c.Role),
		}
	}
	return catalog, nil
}

// Import creates the items whose name is not yet in the catalog. Matching is
// case-insensitive; repeated names inside one file are skipped after the
// first.
func (s *service) Import(
	ctx context.Context,
	companyID string,
	items []ImportItem,
) (ImportResult, error) {
	companyUUID, err := parseCompanyID(companyID)
	if err != nil {
		return ImportResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := qtx.FindAllByCompany(ctx, companyID)
	if err != nil {
		return ImportResult{}, err
	}

	seen := make(map[string]bool, len(existing)+len(items))
	for _, c := range existing {
		seen[strings.ToLower(c.Name)] = true
	}

	result := ImportResult{
		Created: []SalaryComponentResponse{},
		Skipped: []string{},
	}

	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		key := strings.ToLower(name)
		if seen[key] {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		role, err := resolveRole(name, item.Role)
		if err != nil {
			return ImportResult{}, err
		}

		component := &SalaryComponent{
			CompanyID:   companyUUID,
			Name:        name,
			Code:        strings.TrimSpace(item.Code),
			Role:        role,
			Description: item.Description,
			IsActive:    true,
		}
		if err := qtx.Create(ctx, component); err != nil {
			return ImportResult{}, mapRepositoryError(err)
		}

		seen[key] = true
		result.Created = append(result.Created, mapToResponse(*component))
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, err
	}

	if len(result.Created) > 0 {
		s.invalidateCatalog(ctx, companyID)
	}

	s.logger.Info("salary components imported",
		zap.String("company_id", companyID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

func (s *service) invalidateCatalog(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetCatalogKey(companyID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("invalidate salary component catalog failed",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}

// resolveRole normalises an explicit role or derives one from the name when
// none was given.
func resolveRole(name, role string) (string, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return string(salaryengine.ClassifyName(name)), nil
	}
	if !salaryengine.Role(role).Valid() {
		return "", salarycomponenterrors.ErrInvalidSalaryComponentRole
	}
	return role, nil
}

func parseCompanyID(companyID string) (uuid.UUID, error) {
	id, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, apperror.InvalidField("company_id")
	}
	return id, nil
}

func mapToResponse(c SalaryComponent) SalaryComponentResponse {
	resp := SalaryComponentResponse{
		ID:          c.ID,
		CompanyID:   c.CompanyID.String(),
		Name:        c.Name,
		Code:        c.Code,
		Role:        c.Role,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	if !c.UpdatedAt.IsZero() {
		resp.UpdatedAt = c.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(components []SalaryComponent) []SalaryComponentResponse {
	res := make([]SalaryComponentResponse, len(components))
	for i, c := range components {
		res[i] = mapToResponse(c)
	}
	return res
}
