package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// CRN pattern - registrar reference numbers are 4 or 5 digits
	CRNPattern = `^\d{4,5}$`

	// Term code pattern - 6 digits (year + term), e.g. 202710
	TermPattern = `^\d{6}$`

	// Student external id pattern - up to 9 digits
	ExternalIDPattern = `^\d{1,9}$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	CRN        *regexp.Regexp
	Term       *regexp.Regexp
	ExternalID *regexp.Regexp
}{
	CRN:        regexp.MustCompile(CRNPattern),
	Term:       regexp.MustCompile(TermPattern),
	ExternalID: regexp.MustCompile(ExternalIDPattern),
}

// RegisterRules registers the custom binding rules on gin's validator engine.
func RegisterRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("crn", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.CRN.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("term", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Term.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("externalid", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.ExternalID.MatchString(fl.Field().String())
	})
}
