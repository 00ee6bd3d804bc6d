// Package salaryengine distributes an annual cost-to-company across the
// salary components of a template.
//
// The engine is pure: it performs no I/O and keeps no state, so Allocate and
// ResolveRoles may be called concurrently and return identical output for
// identical input.
package salaryengine

import "github.com/shopspring/decimal"

type Role string

const (
	RoleOrdinary Role = "ORDINARY"
	RoleBasic    Role = "BASIC"
	RoleResidual Role = "RESIDUAL"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOrdinary, RoleBasic, RoleResidual:
		return true
	}
	return false
}

type CalculationType string

const (
	// CalcFlat values are monthly currency amounts; annual = value * 12.
	CalcFlat CalculationType = "FLAT"
	// CalcPercentageCTC values are percentages (0-100) of the annual CTC.
	CalcPercentageCTC CalculationType = "PERCENTAGE_CTC"
	// CalcPercentageBasic values are percentages (0-100) of the resolved
	// annual basic amount.
	CalcPercentageBasic CalculationType = "PERCENTAGE_BASIC"
)

func (c CalculationType) Valid() bool {
	switch c {
	case CalcFlat, CalcPercentageCTC, CalcPercentageBasic:
		return true
	}
	return false
}

// Component is a catalog entry. Role is empty for rows stored before roles
// were configured explicitly; those fall back to ClassifyName.
type Component struct {
	ID   int64
	Name string
	Role Role
}

type Catalog []Component

func (c Catalog) find(id int64) (Component, bool) {
	for _, comp := range c {
		if comp.ID == id {
			return comp, true
		}
	}
	return Component{}, false
}

// Mapping is one salary line of a template as entered by the user.
type Mapping struct {
	ComponentID     int64
	CalculationType CalculationType
	Value           Value
	// IsResidual marks the line that absorbs the unallocated balance,
	// regardless of the catalog role of its component.
	IsResidual bool
}

type Request struct {
	AnnualCTC decimal.Decimal
	Mappings  []Mapping
	Catalog   Catalog
}

// Line is a mapping with its derived amounts.
type Line struct {
	ComponentID     int64
	ComponentName   string
	Role            Role
	CalculationType CalculationType
	Value           decimal.Decimal
	IsResidual      bool
	MonthlyAmount   decimal.Decimal
	AnnualAmount    decimal.Decimal
	Invalid         bool
}

type Result struct {
	AnnualCTC       decimal.Decimal
	Lines           []Line
	TotalAnnual     decimal.Decimal
	TotalMonthly    decimal.Decimal
	ReconciledToCTC bool
	Warnings        []Warning
}

func (r Result) HasWarning(kind WarningKind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// InvalidLines returns the indexes of lines excluded from the totals.
func (r Result) InvalidLines() []int {
	var idx []int
	for i, l := range r.Lines {
		if l.Invalid {
			idx = append(idx, i)
		}
	}
	return idx
}
