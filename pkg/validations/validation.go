// All global custom validations in Eventide are defined here.
// These validations are allowed to be used anywhere in the application.

package validations

import (
	"Eventide/pkg/log"
	"context"

	"github.com/asaskevich/govalidator"
)

func RegisterCustomValidations(ctx context.Context, logger log.Logger) {
	// This global validation doesn't allow whitespace in input.
	govalidator.TagMap["nospace"] = govalidator.Validator(func(str string) bool {
		return !govalidator.HasWhitespace(str)
	})
	// This global validation doesn't allow whitespace-only input.
	govalidator.TagMap["nospaceonly"] = govalidator.Validator(func(str string) bool {
		return !govalidator.HasWhitespaceOnly(str)
	})
}
