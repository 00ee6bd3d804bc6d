package salarycomponent

import (
	"errors"
	"fmt"
	"io"
	"strings"

	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"
	"go-payroll/internal/shared/apperror"

	"gopkg.in/yaml.v3"
)

type importFile struct {
	Components []ImportItem `yaml:"components"`
}

// ParseImportFile reads a YAML catalog of the form
//
//	components:
//	  - name: Basic Salary
//	    code: BASIC
//	    role: BASIC
//
// Unknown keys are rejected so typos do not silently drop a role.
func ParseImportFile(r io.Reader) ([]ImportItem, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file importFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalidImport(errors.New("file is empty"))
		}
		return nil, invalidImport(err)
	}

	for i, item := range file.Components {
		if strings.TrimSpace(item.Name) == "" {
			return nil, invalidImport(fmt.Errorf("components[%d]: name is required", i))
		}
		if _, err := resolveRole(item.Name, item.Role); err != nil {
			return nil, invalidImport(fmt.Errorf("components[%d]: unknown role %q", i, item.Role))
		}
	}

	return file.Components, nil
}

func invalidImport(err error) error {
	return apperror.Wrap(err,
		salarycomponenterrors.ErrInvalidImportFile.Code,
		salarycomponenterrors.ErrInvalidImportFile.Message,
		salarycomponenterrors.ErrInvalidImportFile.HTTPStatus,
	)
}
