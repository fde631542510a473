// Package validate registers the custom validation tags used by the binaries
package validate

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/idpay/infra/config"
)

// Iranian mobile numbers, local (09xx) or international (+989xx / 00989xx) form
var mobilePattern = regexp.MustCompile(`^(?:0|\+98|0098)9\d{9}$`)

var once sync.Once

// CustomValidate registers the custom tags on config.App().Validator. Safe to call more than once.
func CustomValidate() {
	once.Do(func() {
		Register(config.App().Validator)
	})
}

// Register adds the custom tags to v and makes field errors use json names
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("ir_mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
}
