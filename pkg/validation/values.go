package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formruntime/pkg/model"
)

// DateLayout is the wire format of date-input values.
const DateLayout = "2006-01-02"

const (
	tagRequired   = "required"
	tagDate       = "datetime"
	tagLeadDigits = "leaddigits"
	tagFracDigits = "fracdigits"
)

var fields = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(tagLeadDigits, digitsWithin(func(lead, _ int) int { return lead })); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation(tagFracDigits, digitsWithin(func(_, frac int) int { return frac })); err != nil {
		panic(err)
	}
	return v
}

// digitsWithin builds a validation that holds when the selected digit count
// of a float field does not exceed the tag parameter.
func digitsWithin(pick func(lead, frac int) int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return pick(digits(fl.Field().Float())) <= limit
	}
}

// ValidateValues checks the value of every visible input in the form. Hidden
// items and their descendants are skipped. Issues carry the field id in Field
// and the field name in Path.
func ValidateValues(form *model.Form) Result {
	result := Result{Valid: true}
	if form == nil {
		return result
	}
	for _, item := range form.Items {
		collectValueIssues(item, &result)
	}
	result.Valid = len(result.Issues) == 0
	return result
}

func collectValueIssues(item *model.Item, result *Result) {
	if item == nil || !item.Visible {
		return
	}
	if item.FieldType.IsInput() {
		for _, message := range CheckValue(item, item.Value) {
			result.Issues = append(result.Issues, Issue{Path: item.Name, Field: item.ID, Message: message})
		}
	}
	for _, child := range item.Items {
		collectValueIssues(child, result)
	}
}

// CheckValue returns the messages value would produce if assigned to item.
// Non-input items never produce messages.
func CheckValue(item *model.Item, value any) []string {
	if item == nil || !item.FieldType.IsInput() {
		return nil
	}
	if fields.Var(presence(item.FieldType, value), tagRequired) != nil {
		if item.Required {
			return []string{"This field is required."}
		}
		return nil
	}

	switch item.FieldType {
	case model.FieldTypeNumberInput:
		number, ok := ToNumber(value)
		if !ok {
			return []string{"Please enter a valid number."}
		}
		return check(number, numberTags(item.Number))
	case model.FieldTypeDateInput:
		raw, _ := value.(string)
		if t, isTime := value.(time.Time); isTime {
			raw = t.Format(DateLayout)
		}
		return check(strings.TrimSpace(raw), []string{tagDate + "=" + DateLayout})
	}
	return nil
}

// presence maps value onto what the required tag sees: blank strings and
// unchecked checkboxes become zero values, anything else that is set counts as
// present.
func presence(fieldType model.FieldType, value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		return v || fieldType != model.FieldTypeCheckbox
	default:
		return true
	}
}

// numberTags translates the constraints of a number input into validator
// tags, one constraint per tag so every violated bound is reported.
func numberTags(c *model.NumberConstraints) []string {
	if c == nil {
		return nil
	}
	var tags []string
	bound := func(tag string, limit *float64) {
		if limit != nil {
			tags = append(tags, tag+"="+formatNumber(*limit))
		}
	}
	bound("gte", c.Minimum)
	bound("gt", c.ExclusiveMinimum)
	bound("lte", c.Maximum)
	bound("lt", c.ExclusiveMaximum)
	if c.LeadDigits != nil {
		tags = append(tags, tagLeadDigits+"="+strconv.Itoa(*c.LeadDigits))
	}
	if c.FracDigits != nil {
		tags = append(tags, tagFracDigits+"="+strconv.Itoa(*c.FracDigits))
	}
	return tags
}

func check(value any, tags []string) []string {
	var messages []string
	for _, tag := range tags {
		err := fields.Var(value, tag)
		if err == nil {
			continue
		}
		var failures validator.ValidationErrors
		if !errors.As(err, &failures) {
			messages = append(messages, err.Error())
			continue
		}
		for _, failure := range failures {
			messages = append(messages, message(failure))
		}
	}
	return messages
}

func message(failure validator.FieldError) string {
	switch failure.Tag() {
	case "gte":
		return fmt.Sprintf("Value must be greater than or equal to %s.", failure.Param())
	case "gt":
		return fmt.Sprintf("Value must be greater than %s.", failure.Param())
	case "lte":
		return fmt.Sprintf("Value must be less than or equal to %s.", failure.Param())
	case "lt":
		return fmt.Sprintf("Value must be less than %s.", failure.Param())
	case tagLeadDigits:
		return fmt.Sprintf("Value must have at most %s digits before the decimal point.", failure.Param())
	case tagFracDigits:
		return fmt.Sprintf("Value must have at most %s digits after the decimal point.", failure.Param())
	case tagDate:
		return "Please enter a valid date (YYYY-MM-DD)."
	default:
		return fmt.Sprintf("Value failed the %s check.", failure.Tag())
	}
}

// ToNumber converts the supported numeric representations (numbers and
// numeric strings) to float64.
func ToNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// digits counts the digits before and after the decimal point of value.
func digits(value float64) (int, int) {
	formatted := strconv.FormatFloat(math.Abs(value), 'f', -1, 64)
	whole, fraction, _ := strings.Cut(formatted, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	return len(whole), len(fraction)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
