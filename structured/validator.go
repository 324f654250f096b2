package structured

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Validator validates decoded JSON data against a JSONSchema.
type Validator interface {
	Validate(data []byte, schema *JSONSchema) error
}

// ParseError is one schema-validation failure at a given JSON path.
type ParseError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors aggregates every ParseError found in one Validate call.
type ValidationErrors struct {
	Errors []ParseError `json:"errors"`
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// DefaultValidator is the built-in Validator, covering JSON Schema's
// core type/constraint keywords plus a handful of string formats.
type DefaultValidator struct {
	formats map[StringFormat]func(string) bool
}

// NewValidator builds a DefaultValidator with the built-in format checks
// registered.
func NewValidator() *DefaultValidator {
	v := &DefaultValidator{formats: make(map[StringFormat]func(string) bool)}
	v.formats[FormatEmail] = matches(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	v.formats[FormatURI] = matches(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	v.formats[FormatUUID] = matches(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	v.formats[FormatDateTime] = matches(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)
	v.formats[FormatDate] = matches(`^\d{4}-\d{2}-\d{2}$`)
	v.formats[FormatTime] = matches(`^\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)
	return v
}

func matches(pattern string) func(string) bool {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}

// RegisterFormat adds or overrides a named format validator.
func (v *DefaultValidator) RegisterFormat(format StringFormat, fn func(string) bool) {
	v.formats[format] = fn
}

// Validate decodes data as JSON and checks it against schema.
func (v *DefaultValidator) Validate(data []byte, schema *JSONSchema) error {
	if schema == nil {
		return nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationErrors{Errors: []ParseError{{Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}
	var errs []ParseError
	v.validate(value, schema, "", &errs)
	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

func (v *DefaultValidator) validate(value any, schema *JSONSchema, path string, errs *[]ParseError) {
	if schema == nil {
		return
	}
	if schema.Const != nil {
		if !equal(value, schema.Const) {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("value must be %v", schema.Const)})
		}
		return
	}
	if len(schema.Enum) > 0 {
		found := false
		for _, e := range schema.Enum {
			if equal(value, e) {
				found = true
				break
			}
		}
		if !found {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("value must be one of: %v", schema.Enum)})
		}
	}
	if schema.Type != "" {
		v.validateType(value, schema, path, errs)
	}
}

func (v *DefaultValidator) validateType(value any, schema *JSONSchema, path string, errs *[]ParseError) {
	switch schema.Type {
	case TypeString:
		v.validateString(value, schema, path, errs)
	case TypeNumber, TypeInteger:
		v.validateNumeric(value, schema, path, errs)
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected boolean, got %T", value)})
		}
	case TypeNull:
		if value != nil {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected null, got %T", value)})
		}
	case TypeObject:
		v.validateObject(value, schema, path, errs)
	case TypeArray:
		v.validateArray(value, schema, path, errs)
	}
}

func (v *DefaultValidator) validateString(value any, schema *JSONSchema, path string, errs *[]ParseError) {
	str, ok := value.(string)
	if !ok {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected string, got %T", value)})
		return
	}
	if schema.MinLength != nil && len(str) < *schema.MinLength {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("length %d below minimum %d", len(str), *schema.MinLength)})
	}
	if schema.MaxLength != nil && len(str) > *schema.MaxLength {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("length %d exceeds maximum %d", len(str), *schema.MaxLength)})
	}
	if schema.Pattern != "" {
		if matched, err := regexp.MatchString(schema.Pattern, str); err != nil || !matched {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("does not match pattern %q", schema.Pattern)})
		}
	}
	if schema.Format != "" {
		if fn, ok := v.formats[schema.Format]; ok && !fn(str) {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("does not match format %q", schema.Format)})
		}
	}
}

func (v *DefaultValidator) validateNumeric(value any, schema *JSONSchema, path string, errs *[]ParseError) {
	num, ok := toFloat64(value)
	if !ok {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected number, got %T", value)})
		return
	}
	if schema.Type == TypeInteger && num != float64(int64(num)) {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected integer, got %v", num)})
		return
	}
	if schema.Minimum != nil && num < *schema.Minimum {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("%v below minimum %v", num, *schema.Minimum)})
	}
	if schema.Maximum != nil && num > *schema.Maximum {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("%v exceeds maximum %v", num, *schema.Maximum)})
	}
}

func (v *DefaultValidator) validateObject(value any, schema *JSONSchema, path string, errs *[]ParseError) {
	obj, ok := value.(map[string]any)
	if !ok {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected object, got %T", value)})
		return
	}
	for _, req := range schema.Required {
		val, exists := obj[req]
		if !exists || val == nil {
			*errs = append(*errs, ParseError{Path: join(path, req), Message: "required field is missing"})
		}
	}
	for name, val := range obj {
		if prop, ok := schema.Properties[name]; ok {
			v.validate(val, prop, join(path, name), errs)
		} else if schema.AdditionalProperties != nil && !*schema.AdditionalProperties {
			*errs = append(*errs, ParseError{Path: join(path, name), Message: "additional property not allowed"})
		}
	}
}

func (v *DefaultValidator) validateArray(value any, schema *JSONSchema, path string, errs *[]ParseError) {
	arr, ok := value.([]any)
	if !ok {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected array, got %T", value)})
		return
	}
	if schema.MinItems != nil && len(arr) < *schema.MinItems {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("%d items below minimum %d", len(arr), *schema.MinItems)})
	}
	if schema.MaxItems != nil && len(arr) > *schema.MaxItems {
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("%d items exceeds maximum %d", len(arr), *schema.MaxItems)})
	}
	if schema.Items != nil {
		for i, item := range arr {
			v.validate(item, schema.Items, fmt.Sprintf("%s[%d]", path, i), errs)
		}
	}
}

func toFloat64(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func equal(a, b any) bool {
	if aNum, aOK := toFloat64(a); aOK {
		if bNum, bOK := toFloat64(b); bOK {
			return aNum == bNum
		}
	}
	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)
	return string(aJSON) == string(bJSON)
}

func join(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + "." + segment
}
