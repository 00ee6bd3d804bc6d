package salaryengine

import (
	"fmt"

	salaryengineerrors "go-payroll/internal/salaryengine/errors"

	"github.com/shopspring/decimal"
)

// Allocate computes the monthly and annual amount of every mapping.
//
// Pass order matters: basic is resolved first because percentage-of-basic
// lines depend on it, then every other non-residual line, then the residual
// line takes whatever is left of the CTC. Each amount is rounded half-up to
// two places as soon as it is computed.
func Allocate(req Request) (Result, error) {
	if req.AnnualCTC.IsNegative() {
		return Result{}, salaryengineerrors.ErrInvalidCTC
	}
	ctc := req.AnnualCTC

	res := ResolveRoles(req.Mappings, req.Catalog)
	warnings := append([]Warning(nil), res.Warnings...)
	lines := make([]Line, len(res.Mappings))

	seen := make(map[int64]int, len(res.Mappings))
	for i, rm := range res.Mappings {
		lines[i] = Line{
			ComponentID:     rm.ComponentID,
			ComponentName:   rm.ComponentName,
			Role:            rm.Role,
			CalculationType: rm.CalculationType,
			IsResidual:      rm.Role == RoleResidual,
			Value:           decimal.Zero,
			MonthlyAmount:   decimal.Zero,
			AnnualAmount:    decimal.Zero,
		}

		if first, dup := seen[rm.ComponentID]; dup {
			lines[i].Invalid = true
			warnings = append(warnings, mappingWarning(
				WarningInvalidMapping, i, rm.ComponentID,
				"component %d is already mapped on row %d", rm.ComponentID, first+1,
			))
			continue
		}
		seen[rm.ComponentID] = i

		if rm.Role == RoleResidual {
			continue
		}

		v, msg := validateMapping(rm.Mapping)
		if msg != "" {
			lines[i].Invalid = true
			warnings = append(warnings, mappingWarning(WarningInvalidMapping, i, rm.ComponentID, "%s", msg))
			continue
		}
		lines[i].Value = v
	}

	// Pass 1: basic.
	basicAnnual := decimal.Zero
	if b := res.BasicIndex; b >= 0 && !lines[b].Invalid {
		switch lines[b].CalculationType {
		case CalcPercentageCTC:
			basicAnnual = percentOf(lines[b].Value, ctc)
		case CalcFlat:
			basicAnnual = annualFromMonthly(lines[b].Value)
		case CalcPercentageBasic:
			lines[b].Invalid = true
			lines[b].Value = decimal.Zero
			warnings = append(warnings, mappingWarning(
				WarningInvalidMapping, b, lines[b].ComponentID,
				"basic component cannot be calculated as a percentage of basic",
			))
		}
	}

	// Pass 2: everything that is not residual.
	consumed := decimal.Zero
	for i := range lines {
		l := &lines[i]
		if l.IsResidual || l.Invalid {
			continue
		}

		var annual decimal.Decimal
		switch {
		case i == res.BasicIndex:
			annual = basicAnnual
		case l.CalculationType == CalcPercentageCTC:
			annual = percentOf(l.Value, ctc)
		case l.CalculationType == CalcPercentageBasic:
			annual = percentOf(l.Value, basicAnnual)
		default:
			annual = annualFromMonthly(l.Value)
		}

		l.AnnualAmount = annual
		l.MonthlyAmount = monthlyFromAnnual(annual)
		consumed = consumed.Add(annual)
	}

	// Pass 3: residual absorption.
	balance := RoundMoney(ctc.Sub(consumed))
	if balance.IsNegative() {
		warnings = append(warnings, templateWarning(
			WarningOverAllocation,
			"components allocate %s against an annual CTC of %s, residual set to zero",
			consumed.StringFixed(moneyPlaces), ctc.StringFixed(moneyPlaces),
		))
		balance = decimal.Zero
	}

	absorbed := false
	for _, i := range res.ResidualIndexes {
		l := &lines[i]
		if l.Invalid {
			continue
		}
		if !absorbed {
			l.AnnualAmount = balance
			l.MonthlyAmount = monthlyFromAnnual(balance)
			absorbed = true
		}
		l.Value = l.MonthlyAmount
	}

	totalAnnual, totalMonthly := decimal.Zero, decimal.Zero
	for _, l := range lines {
		totalAnnual = totalAnnual.Add(l.AnnualAmount)
		totalMonthly = totalMonthly.Add(l.MonthlyAmount)
	}

	return Result{
		AnnualCTC:       ctc,
		Lines:           lines,
		TotalAnnual:     totalAnnual,
		TotalMonthly:    totalMonthly,
		ReconciledToCTC: totalAnnual.Sub(ctc).Abs().LessThanOrEqual(Tolerance),
		Warnings:        warnings,
	}, nil
}

func validateMapping(m Mapping) (decimal.Decimal, string) {
	if !m.CalculationType.Valid() {
		return decimal.Zero, "unrecognised calculation type \"" + string(m.CalculationType) + "\""
	}

	v, err := m.Value.Decimal()
	if err != nil {
		return decimal.Zero, "value \"" + string(m.Value) + "\" is not a number"
	}
	if v.IsNegative() {
		return decimal.Zero, "value must not be negative"
	}
	if !FitsValueScale(v) {
		return decimal.Zero, fmt.Sprintf("value must have at most %d decimal places", ValuePlaces)
	}
	if m.CalculationType != CalcFlat && v.GreaterThan(hundred) {
		return decimal.Zero, "percentage must be between 0 and 100"
	}
	return v, ""
}

// ParseCTC parses a user supplied annual CTC. Anything that is not a
// non-negative number is InvalidInput.
func ParseCTC(raw string) (decimal.Decimal, error) {
	ctc, err := Value(raw).Decimal()
	if err != nil || ctc.IsNegative() {
		return decimal.Zero, salaryengineerrors.ErrInvalidCTC
	}
	return ctc, nil
}
