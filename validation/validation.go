package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// type Validator interface {
// 	Validate(request http.Request) (Violations, error)
// }

// type validator struct {
// 	rules map[string]string
// }

type Violations struct {
	Errors map[string][]error
}

func (violations Violations) MarshalJSON() ([]byte, error) {
	errors := make(map[string][]string)
	for fieldName, fieldErrors := range violations.Errors {
		errors[fieldName] = make([]string, len(fieldErrors))
		for index, fieldError := range fieldErrors {
			errors[fieldName][index] = fieldError.Error()
		}
	}

	return json.Marshal(map[string]map[string][]string{
		"errors": errors,
	})
}

func (violations Violations) IsEmpty() bool {
	return len(violations.Errors) == 0
}

func ValidateMap(data map[string]any, rules map[string][]string) Violations {
	var violations Violations
	violations.Errors = make(map[string][]error)

	for attributeName, attributeValue := range data {
		attributeRules, attributeRulesExists := rules[attributeName]
		if !attributeRulesExists {
			violations.Errors[attributeName] = append(violations.Errors[attributeName], fmt.Errorf("validation: no rules found :: %s", attributeName))
			continue
		}

		var errorCollection []error
		for _, attributeRule := range attributeRules {
			if err := validate(attributeRule, attributeName, attributeValue); err != nil {
				errorCollection = append(errorCollection, err)
			}
		}

		if len(errorCollection) != 0 {
			violations.Errors[attributeName] = errorCollection
		}
	}

	return violations
}

func validate(rule string, name string, value any) error {
	ruleName, ruleArg, _ := strings.Cut(rule, ":")

	switch ruleName {
	case "required":
		{
			err := fmt.Errorf("%s is required", name)

			switch v := value.(type) {
			case nil:
				{
					return err
				}
			case string:
				{
					if v == "" {
						return err
					}
				}
			case []any:
				{
					if len(v) == 0 {
						return err
					}
				}
			case []string:
				{
					if len(v) == 0 || v[0] == "" {
						return err
					}
				}
			}
		}
	case "in":
		{
			allowed := strings.Split(ruleArg, ",")
			s, ok := valueAsString(value)
			if !ok {
				return fmt.Errorf("%s must be a string", name)
			}
			for _, a := range allowed {
				if s == a {
					return nil
				}
			}
			return fmt.Errorf("%s must be one of %s", name, ruleArg)
		}
	case "max":
		{
			limit, err := strconv.Atoi(ruleArg)
			if err != nil {
				return fmt.Errorf("invalid validation rule argument :: %s", rule)
			}
			s, ok := valueAsString(value)
			if !ok {
				return fmt.Errorf("%s must be a string", name)
			}
			if len(s) > limit {
				return fmt.Errorf("%s must be at most %d characters", name, limit)
			}
		}
	case "min":
		{
			limit, err := strconv.Atoi(ruleArg)
			if err != nil {
				return fmt.Errorf("invalid validation rule argument :: %s", rule)
			}
			s, ok := valueAsString(value)
			if !ok {
				return fmt.Errorf("%s must be a string", name)
			}
			if len(s) < limit {
				return fmt.Errorf("%s must be at least %d characters", name, limit)
			}
		}
	default:
		{
			return fmt.Errorf("invalid validation rule :: %s", rule)
		}
	}

	return nil
}

func valueAsString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []string:
		if len(v) == 1 {
			return v[0], true
		}
	}
	return "", false
}

// Numberic operations
func ValidateInteger(value string) bool {
	_, err := strconv.Atoi(value)
	return err == nil
}

func ValidateGreaterThen(value string, size int) bool {
	valueAsInt, err := strconv.Atoi(value)
	if err != nil {
		return false
	}

	return valueAsInt > size
}

func ValidateGreaterThenOrEqual(value string, size int) bool {
	valueAsInt, err := strconv.Atoi(value)
	if err != nil {
		return false
	}

	return valueAsInt >= size
}

func ValidateLesserThen(value string, size int) bool {
	valueAsInt, err := strconv.Atoi(value)
	if err != nil {
		return false
	}

	return valueAsInt < size
}

func ValidateLesserThenOrEqual(value string, size int) bool {
	valueAsInt, err := strconv.Atoi(value)
	if err != nil {
		return false
	}

	return valueAsInt <= size
}

// Boolean operations
func ValidateBoolean(value string) bool {
	return ValidateTrue(value) || ValidateFalse(value)
}

func ValidateTrue(value string) bool {
	return value == "1" || value == "true"
}

func ValidateFalse(value string) bool {
	return value == "0" || value == "false"
}

// string operations
func ValidateContains(value string, needle string) bool {
	return strings.Contains(value, needle)
}

// Time operations
func ValidateBefore(value string, format string, timestamp time.Time) bool {
	valueAsTime, err := time.Parse(format, value)
	if err != nil {
		return false
	}

	return timestamp.Before(valueAsTime)
}

func ValidateAfter(value string, format string, timestamp time.Time) bool {
	valueAsTime, err := time.Parse(format, value)
	if err != nil {
		return false
	}

	return timestamp.After(valueAsTime)
}
