package salaryengine

import "fmt"

type WarningKind string

const (
	WarningInvalidMapping   WarningKind = "INVALID_MAPPING"
	WarningOverAllocation   WarningKind = "OVER_ALLOCATION"
	WarningAmbiguousRole    WarningKind = "AMBIGUOUS_ROLE"
	WarningUnknownComponent WarningKind = "UNKNOWN_COMPONENT"
)

// Warning is a recoverable condition. Index is the position of the mapping it
// refers to, or -1 when it concerns the whole template.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	Index       int         `json:"index"`
	ComponentID int64       `json:"component_id,omitempty"`
	Message     string      `json:"message"`
}

func mappingWarning(kind WarningKind, index int, componentID int64, format string, args ...any) Warning {
	return Warning{
		Kind:        kind,
		Index:       index,
		ComponentID: componentID,
		Message:     fmt.Sprintf(format, args...),
	}
}

func templateWarning(kind WarningKind, format string, args ...any) Warning {
	return Warning{
		Kind:    kind,
		Index:   -1,
		Message: fmt.Sprintf(format, args...),
	}
}
