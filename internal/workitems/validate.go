package workitems

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/pburrows/lepidoptera/pkg/types"
)

// validateFieldValues checks every supplied value against its definition on
// the work item type and verifies required custom fields are present. The
// first failure wins and comes back as a *types.FieldValidationError.
func validateFieldValues(cfg *types.TypeConfig, inputs []types.FieldValueInput) error {
	supplied := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		supplied[in.FieldID] = true

		if in.IsAssignmentField {
			def := cfg.AssignmentField(in.FieldID)
			if def == nil {
				return types.NewFieldValidationError(in.FieldID, in.FieldID,
					fmt.Sprintf("type %q has no assignment field with this id", cfg.Name))
			}
			if def.Required && in.Value == "" {
				return types.NewFieldValidationError(def.ID, def.Label, "value is required")
			}
			continue
		}

		field := cfg.Field(in.FieldID)
		if field == nil {
			return types.NewFieldValidationError(in.FieldID, in.FieldID,
				fmt.Sprintf("type %q has no field with this id", cfg.Name))
		}
		if err := validateFieldValue(field, in.Value); err != nil {
			return err
		}
	}

	for i := range cfg.Fields {
		f := &cfg.Fields[i]
		if f.Required && !supplied[f.ID] && len(f.DefaultValue) == 0 {
			return types.NewFieldValidationError(f.ID, f.Label, "value is required")
		}
	}
	for i := range cfg.AssignmentFieldDefinitions {
		d := &cfg.AssignmentFieldDefinitions[i]
		if d.Required && !supplied[d.ID] && d.DefaultValue == "" {
			return types.NewFieldValidationError(d.ID, d.Label, "value is required")
		}
	}
	return nil
}

// validateFieldValue applies the field's type-specific rules to one value.
func validateFieldValue(f *types.WorkItemField, value string) error {
	if value == "" {
		if f.Required {
			return types.NewFieldValidationError(f.ID, f.Label, "value is required")
		}
		return nil
	}

	switch f.FieldType {
	case "number":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return types.NewFieldValidationError(f.ID, f.Label,
				fmt.Sprintf("%q is not a number", value))
		}
		if v := f.Validation; v != nil {
			if v.Min != nil && n < *v.Min {
				return types.NewFieldValidationError(f.ID, f.Label,
					fmt.Sprintf("must be at least %g", *v.Min))
			}
			if v.Max != nil && n > *v.Max {
				return types.NewFieldValidationError(f.ID, f.Label,
					fmt.Sprintf("must be at most %g", *v.Max))
			}
		}

	case "date":
		t, err := parseDate(value)
		if err != nil {
			return types.NewFieldValidationError(f.ID, f.Label,
				fmt.Sprintf("%q is not a date", value))
		}
		if v := f.Validation; v != nil {
			unix := float64(t.Unix())
			if v.Min != nil && unix < *v.Min {
				return types.NewFieldValidationError(f.ID, f.Label, "date is too early")
			}
			if v.Max != nil && unix > *v.Max {
				return types.NewFieldValidationError(f.ID, f.Label, "date is too late")
			}
		}

	case "select", "radio":
		if len(f.Options) > 0 && !hasOption(f.Options, value) {
			return types.NewFieldValidationError(f.ID, f.Label,
				fmt.Sprintf("%q is not one of the allowed options", value))
		}

	default:
		if v := f.Validation; v != nil {
			length := utf8.RuneCountInString(value)
			if v.MinLength != nil && length < *v.MinLength {
				return types.NewFieldValidationError(f.ID, f.Label,
					fmt.Sprintf("must be at least %d characters", *v.MinLength))
			}
			if v.MaxLength != nil && length > *v.MaxLength {
				return types.NewFieldValidationError(f.ID, f.Label,
					fmt.Sprintf("must be at most %d characters", *v.MaxLength))
			}
			if v.Pattern != "" {
				re, err := regexp.Compile(v.Pattern)
				if err != nil {
					return types.NewFieldValidationError(f.ID, f.Label,
						fmt.Sprintf("field pattern %q does not compile", v.Pattern))
				}
				if !re.MatchString(value) {
					return types.NewFieldValidationError(f.ID, f.Label,
						fmt.Sprintf("must match pattern %q", v.Pattern))
				}
			}
		}
	}
	return nil
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func hasOption(options []types.FieldOption, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
