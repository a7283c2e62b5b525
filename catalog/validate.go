package catalog

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	apperrors "github.com/kbukum/apikit/errors"
)

// References reports which strategy names are registered.
type References interface {
	HasBinder(name string) bool
	HasParser(name string) bool
	HasPageParser(name string) bool
	HasFallback(name string) bool
	HasFilter(name string) bool
}

var validate = validator.New()

// Validate checks the whole catalog and returns a configuration error listing
// every problem found, or nil.
func Validate(c Catalog, refs References) error {
	var errs error
	seen := make(map[string]bool, len(c.Operations))
	for i, spec := range c.Operations {
		if spec.Key != "" && seen[spec.Key] {
			errs = multierr.Append(errs, fmt.Errorf("operation %s: duplicate key", spec.Key))
		}
		seen[spec.Key] = true
		if err := ValidateOperation(spec, refs); err != nil {
			name := spec.Key
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			errs = multierr.Append(errs, fmt.Errorf("operation %s: %w", name, err))
		}
	}
	if errs == nil {
		return nil
	}
	msgs := make([]string, 0)
	for _, e := range multierr.Errors(errs) {
		msgs = append(msgs, e.Error())
	}
	return apperrors.Configuration("invalid catalog %s: %s", c.API, strings.Join(msgs, "; ")).WithCause(errs)
}

// ValidateOperation checks one spec. refs may be nil to skip strategy checks.
func ValidateOperation(spec OperationSpec, refs References) error {
	var errs error
	if err := validate.Struct(spec); err != nil {
		errs = multierr.Append(errs, structError(err))
	}

	tmpl, err := ParseTemplate(spec.Path)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if !strings.HasPrefix(spec.Path, "/") && spec.Path != "" {
		errs = multierr.Append(errs, fmt.Errorf("path %q must start with '/'", spec.Path))
	}

	declared := make(map[string]Param, len(spec.Params))
	for _, p := range spec.Params {
		if _, dup := declared[p.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("parameter %s declared twice", p.Name))
		}
		declared[p.Name] = p
	}

	if err == nil {
		placeholders := make(map[string]bool)
		for _, name := range tmpl.Names() {
			placeholders[name] = true
			p, ok := declared[name]
			switch {
			case name == TokenAPIVersion || name == TokenBuildVersion:
			case !ok:
				errs = multierr.Append(errs, fmt.Errorf("placeholder {%s} has no declared parameter", name))
			case p.In != InPath:
				errs = multierr.Append(errs, fmt.Errorf("placeholder {%s} is declared in %s, not path", name, p.In))
			}
		}
		for _, p := range spec.Params {
			if p.In == InPath && !placeholders[p.Name] {
				errs = multierr.Append(errs, fmt.Errorf("path parameter %s does not appear in %q", p.Name, spec.Path))
			}
		}
	}

	hasPayload, hasForm := false, false
	for _, p := range spec.Params {
		switch p.In {
		case InPayload:
			hasPayload = true
		case InForm:
			hasForm = true
		}
	}
	if hasPayload && spec.Binder == "" {
		errs = multierr.Append(errs, fmt.Errorf("payload parameters require a binder"))
	}
	if hasForm && spec.Binder != "" {
		errs = multierr.Append(errs, fmt.Errorf("form parameters cannot be combined with binder %s", spec.Binder))
	}

	if refs != nil {
		if spec.Binder != "" && !refs.HasBinder(spec.Binder) {
			errs = multierr.Append(errs, fmt.Errorf("unknown binder %q", spec.Binder))
		}
		if spec.Parser != "" && !refs.HasParser(spec.Parser) {
			errs = multierr.Append(errs, fmt.Errorf("unknown parser %q", spec.Parser))
		}
		if spec.Fallback != "" && !refs.HasFallback(spec.Fallback) {
			errs = multierr.Append(errs, fmt.Errorf("unknown fallback %q", spec.Fallback))
		}
		for _, f := range spec.Filters {
			if !refs.HasFilter(f) {
				errs = multierr.Append(errs, fmt.Errorf("unknown filter %q", f))
			}
		}
		if spec.Paging != nil && spec.Paging.Parser != "" && !refs.HasPageParser(spec.Paging.Parser) {
			errs = multierr.Append(errs, fmt.Errorf("unknown page parser %q", spec.Paging.Parser))
		}
	}
	return errs
}

func structError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(parts, ", "))
}
