package salaryengine

import "strings"

var (
	basicKeywords    = []string{"basic"}
	residualKeywords = []string{"special allowance", "fixed"}
)

// ClassifyName derives a role from a component name. Roles are stored on the
// catalog; this is only the default applied when a component is created or
// imported without one, and the fallback for rows that predate stored roles.
func ClassifyName(name string) Role {
	n := strings.ToLower(name)
	for _, k := range basicKeywords {
		if strings.Contains(n, k) {
			return RoleBasic
		}
	}
	for _, k := range residualKeywords {
		if strings.Contains(n, k) {
			return RoleResidual
		}
	}
	return RoleOrdinary
}

type ResolvedMapping struct {
	Mapping
	ComponentName string
	Role          Role
	Known         bool
}

type Resolution struct {
	Mappings []ResolvedMapping
	// BasicIndex is the mapping Pass 1 resolves, or -1.
	BasicIndex int
	// ResidualIndexes lists every residual mapping in input order; only the
	// first one absorbs the balance.
	ResidualIndexes []int
	Warnings        []Warning
}

func (r Resolution) ResidualIndex() int {
	if len(r.ResidualIndexes) == 0 {
		return -1
	}
	return r.ResidualIndexes[0]
}

// ResolveRoles tags every mapping with the role of its component. Missing
// catalog entries and ambiguous basic/residual designations are reported as
// warnings; nothing here fails.
func ResolveRoles(mappings []Mapping, catalog Catalog) Resolution {
	res := Resolution{
		Mappings:   make([]ResolvedMapping, len(mappings)),
		BasicIndex: -1,
	}

	var basics []int
	for i, m := range mappings {
		rm := ResolvedMapping{Mapping: m, Role: RoleOrdinary}

		comp, ok := catalog.find(m.ComponentID)
		if ok {
			rm.Known = true
			rm.ComponentName = comp.Name
			rm.Role = comp.Role
			if !rm.Role.Valid() {
				rm.Role = ClassifyName(comp.Name)
			}
		} else {
			res.Warnings = append(res.Warnings, mappingWarning(
				WarningUnknownComponent, i, m.ComponentID,
				"component %d is not in the catalog, treated as ordinary", m.ComponentID,
			))
		}

		if m.IsResidual {
			rm.Role = RoleResidual
		}

		switch rm.Role {
		case RoleBasic:
			basics = append(basics, i)
		case RoleResidual:
			res.ResidualIndexes = append(res.ResidualIndexes, i)
		}
		res.Mappings[i] = rm
	}

	switch {
	case len(basics) == 0:
		res.Warnings = append(res.Warnings, templateWarning(
			WarningAmbiguousRole, "no basic component mapped, percentage-of-basic lines resolve to zero",
		))
	case len(basics) > 1:
		res.Warnings = append(res.Warnings, templateWarning(
			WarningAmbiguousRole, "%d basic components mapped, using component %d",
			len(basics), mappings[basics[0]].ComponentID,
		))
	}
	if len(basics) > 0 {
		res.BasicIndex = basics[0]
	}

	switch n := len(res.ResidualIndexes); {
	case n == 0:
		res.Warnings = append(res.Warnings, templateWarning(
			WarningAmbiguousRole, "no residual component mapped, the balance is left unallocated",
		))
	case n > 1:
		res.Warnings = append(res.Warnings, templateWarning(
			WarningAmbiguousRole, "%d residual components mapped, component %d absorbs the balance",
			n, mappings[res.ResidualIndexes[0]].ComponentID,
		))
	}

	return res
}
