package app

import (
	"context"
	"os"

	"go-payroll/internal/config"
	"go-payroll/internal/salarycomponent"

	"go.uber.org/zap"
)

// ImportComponents loads a YAML catalog file into a company's salary
// components. Names that already exist are skipped.
func ImportComponents(ctx context.Context, cfg config.Config, companyID, path string) (salarycomponent.ImportResult, error) {
	logger := zap.L().Named("app.importer")

	f, err := os.Open(path)
	if err != nil {
		return salarycomponent.ImportResult{}, err
	}
	defer f.Close()

	items, err := salarycomponent.ParseImportFile(f)
	if err != nil {
		return salarycomponent.ImportResult{}, err
	}

	in, err := Connect(cfg, logger, true)
	if err != nil {
		return salarycomponent.ImportResult{}, err
	}
	defer in.Close()

	result, err := newServices(in).components.Import(ctx, companyID, items)
	if err != nil {
		return salarycomponent.ImportResult{}, err
	}

	logger.Info("salary components imported",
		zap.String("company_id", companyID),
		zap.String("file", path),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// SeedPermissions inserts the permission catalogue and returns the number
// of new rows.
func SeedPermissions(ctx context.Context, cfg config.Config) (int64, error) {
	logger := zap.L().Named("app.importer")

	in, err := Connect(cfg, logger, false)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	rbacService, err := newRBACService(in)
	if err != nil {
		return 0, err
	}
	return rbacService.SeedPermissions(ctx)
}
