package application

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-scrutineer/internal/domain"
)

// isoDateLayout is the only accepted spelling of a filter date.
const isoDateLayout = time.DateOnly

// maxSuggestionDistance is the largest edit distance at which an unknown
// value still gets a "did you mean" hint.
const maxSuggestionDistance = 2

// configValidator validates Config with the scrutineer tags registered.
var configValidator = mustConfigValidator()

func mustConfigValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterConfigValidators(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterConfigValidators registers the level, style, agegroup and
// isodate tags with v. Each accepts every spelling the corresponding
// domain parser accepts.
// RegisterConfigValidators returns an error if any registration fails.
func RegisterConfigValidators(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"level":    validateLevel,
		"style":    validateStyle,
		"agegroup": validateAgeGroup,
		"isodate":  validateISODate,
	}
	for _, tag := range slices.Sorted(maps.Keys(tags)) {
		if err := v.RegisterValidation(tag, tags[tag]); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

func validateLevel(fl validator.FieldLevel) bool {
	_, err := domain.ParseLevel(fl.Field().String())
	return err == nil
}

func validateStyle(fl validator.FieldLevel) bool {
	_, err := domain.ParseStyle(fl.Field().String())
	return err == nil
}

func validateAgeGroup(fl validator.FieldLevel) bool {
	_, err := domain.ParseAgeGroup(fl.Field().String())
	return err == nil
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(isoDateLayout, fl.Field().String())
	return err == nil
}

// describeFieldError turns a validator failure into a readable error,
// adding a suggestion for near-miss enum values.
func describeFieldError(fe validator.FieldError) error {
	value := fmt.Sprint(fe.Value())
	switch fe.Tag() {
	case "level", "style", "agegroup":
		msg := fmt.Sprintf("unknown %s %q", fe.Tag(), value)
		if hint := Suggest(value, candidates(fe.Tag())); hint != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", hint)
		}
		return fmt.Errorf("%w: %s", domain.ErrUnknownValue, msg)
	case "isodate":
		return fmt.Errorf("%q is not a date in YYYY-MM-DD form", value)
	case "required":
		return fmt.Errorf("value is required")
	default:
		return fmt.Errorf("failed %q=%s (value %v)", fe.Tag(), fe.Param(), fe.Value())
	}
}

func candidates(tag string) []string {
	var out []string
	switch tag {
	case "level":
		for _, l := range domain.Levels() {
			out = append(out, string(l))
		}
	case "style":
		out = []string{"std", "standard", "lat", "latin", "latein"}
	case "agegroup":
		for _, a := range domain.AgeGroups() {
			out = append(out, string(a))
		}
	}
	return out
}

// Suggest returns the candidate closest to value by case-insensitive
// Levenshtein distance, or "" when none is within two edits. Ties go to
// the earlier candidate.
func Suggest(value string, candidates []string) string {
	needle := strings.ToLower(strings.TrimSpace(value))
	best, bestDist := "", maxSuggestionDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(needle, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
