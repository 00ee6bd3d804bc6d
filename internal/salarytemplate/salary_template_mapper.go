package salarytemplate

import (
	"time"

	"go-payroll/internal/salaryengine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toEngineMappings(inputs []MappingInput) []salaryengine.Mapping {
	mappings := make([]salaryengine.Mapping, 0, len(inputs))
	for _, in := range inputs {
		mappings = append(mappings, salaryengine.Mapping{
			ComponentID:     in.ComponentID,
			CalculationType: salaryengine.CalculationType(in.CalculationType),
			Value:           in.Value,
			IsResidual:      in.IsResidual,
		})
	}
	return mappings
}

func storedToEngineMappings(rows []SalaryTemplateMapping) []salaryengine.Mapping {
	mappings := make([]salaryengine.Mapping, 0, len(rows))
	for _, row := range rows {
		mappings = append(mappings, salaryengine.Mapping{
			ComponentID:     row.ComponentID,
			CalculationType: salaryengine.CalculationType(row.CalculationType),
			Value:           salaryengine.ValueOf(row.Value),
			IsResidual:      row.IsResidual,
		})
	}
	return mappings
}

// buildMappingRows persists each row as it was configured, so a later
// catalog role change still reaches the saved template: is_residual is the
// row's own flag, not the role resolved today. A residual row keeps its own
// calculation type and value when it has usable ones and otherwise falls
// back to FLAT at the monthly amount the engine gave it.
func buildMappingRows(templateID, companyID uuid.UUID, inputs []MappingInput, result salaryengine.Result) []SalaryTemplateMapping {
	rows := make([]SalaryTemplateMapping, 0, len(result.Lines))
	for i, line := range result.Lines {
		in := inputs[i]

		calcType := salaryengine.CalculationType(in.CalculationType)
		value := line.Value
		if line.Role == salaryengine.RoleResidual {
			if !calcType.Valid() {
				calcType = salaryengine.CalcFlat
			}
			if v, ok := storableValue(in.Value); ok {
				value = v
			}
		}

		rows = append(rows, SalaryTemplateMapping{
			ID:              uuid.New(),
			TemplateID:      templateID,
			CompanyID:       companyID,
			ComponentID:     line.ComponentID,
			CalculationType: string(calcType),
			Value:           value,
			IsResidual:      in.IsResidual,
			MonthlyAmount:   line.MonthlyAmount,
			AnnualAmount:    line.AnnualAmount,
			Position:        i,
		})
	}
	return rows
}

func storableValue(v salaryengine.Value) (decimal.Decimal, bool) {
	d, err := v.Decimal()
	if err != nil || d.IsNegative() || !salaryengine.FitsValueScale(d) {
		return decimal.Zero, false
	}
	return d, true
}

func toMappingResponses(lines []salaryengine.Line) []MappingResponse {
	resp := make([]MappingResponse, 0, len(lines))
	for _, l := range lines {
		resp = append(resp, MappingResponse{
			ComponentID:     l.ComponentID,
			ComponentName:   l.ComponentName,
			Role:            string(l.Role),
			CalculationType: string(l.CalculationType),
			Value:           money(l.Value),
			IsResidual:      l.IsResidual,
			MonthlyAmount:   money(l.MonthlyAmount),
			AnnualAmount:    money(l.AnnualAmount),
			Invalid:         l.Invalid,
		})
	}
	return resp
}

func warningsOf(result salaryengine.Result) []salaryengine.Warning {
	if result.Warnings == nil {
		return []salaryengine.Warning{}
	}
	return result.Warnings
}

func toAllocationResponse(result salaryengine.Result) AllocationResponse {
	return AllocationResponse{
		AnnualCTC:       money(result.AnnualCTC),
		Mappings:        toMappingResponses(result.Lines),
		TotalAnnual:     money(result.TotalAnnual),
		TotalMonthly:    money(result.TotalMonthly),
		ReconciledToCTC: result.ReconciledToCTC,
		Warnings:        warningsOf(result),
	}
}

func toTemplateResponse(t SalaryTemplate, result salaryengine.Result) SalaryTemplateResponse {
	resp := baseResponse(t)
	resp.Mappings = toMappingResponses(result.Lines)
	resp.TotalAnnual = money(result.TotalAnnual)
	resp.TotalMonthly = money(result.TotalMonthly)
	resp.ReconciledToCTC = result.ReconciledToCTC
	resp.Warnings = result.Warnings
	return resp
}

// toListResponse summarises a template from its stored amounts without
// re-running the allocation.
func toListResponse(t SalaryTemplate) SalaryTemplateResponse {
	resp := baseResponse(t)

	total := decimal.Zero
	for _, m := range t.Mappings {
		total = total.Add(m.AnnualAmount)
	}
	resp.TotalAnnual = money(total)
	resp.TotalMonthly = money(salaryengine.RoundMoney(total.Div(decimal.NewFromInt(12))))
	resp.ReconciledToCTC = total.Sub(t.AnnualCTC).Abs().LessThanOrEqual(salaryengine.Tolerance)
	return resp
}

func baseResponse(t SalaryTemplate) SalaryTemplateResponse {
	resp := SalaryTemplateResponse{
		ID:           t.ID.String(),
		CompanyID:    t.CompanyID.String(),
		Name:         t.Name,
		Description:  t.Description,
		AnnualCTC:    money(t.AnnualCTC),
		Status:       t.Status,
		MappingCount: len(t.Mappings),
	}
	if t.CreatedBy != uuid.Nil {
		resp.CreatedBy = t.CreatedBy.String()
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	if !t.UpdatedAt.IsZero() {
		resp.UpdatedAt = t.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
