package domain

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var judgeCodePattern = regexp.MustCompile(`^[A-Z]{1,2}$`)

// validate is the package-level validator with the domain's closed sets
// registered as tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validator: %v", tag, err))
		}
	}
	must("judgecode", func(fl validator.FieldLevel) bool {
		return judgeCodePattern.MatchString(fl.Field().String())
	})
	must("dance", func(fl validator.FieldLevel) bool { return Dance(fl.Field().String()).Valid() })
	must("level", func(fl validator.FieldLevel) bool { return Level(fl.Field().String()).Valid() })
	must("style", func(fl validator.FieldLevel) bool { return Style(fl.Field().String()).Valid() })
	must("agegroup", func(fl validator.FieldLevel) bool { return AgeGroup(fl.Field().String()).Valid() })
	must("identity", func(fl validator.FieldLevel) bool { return IdentityKind(fl.Field().String()).Valid() })
	return v
}

// Validate checks the structural preconditions the extractor must uphold:
// known enum values, unique bibs, unique and well-formed judge codes.
// It does not decide fidelity; see the fidelity gate for that.
func (c *Competition) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate competition: %w", err)
	}
	verr := NewValidationError("Competition " + c.Key())
	for _, fe := range fieldErrs {
		verr.AddError(fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return verr
}

// Validate checks every competition of the event.
func (e *Event) Validate() error {
	verr := NewValidationError("Event " + e.Name)
	if e.Name == "" {
		verr.AddError("name is required")
	}
	for i := range e.Competitions {
		if err := e.Competitions[i].Validate(); err != nil {
			verr.AddError(err.Error())
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
