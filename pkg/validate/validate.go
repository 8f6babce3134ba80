// Package validate checks request DTOs against their `validate` struct tags.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fkhayef/groupapply/pkg/apperr"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates s and returns an apperr validation error describing the
// first failing fields, or nil.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return apperr.Validation("invalid request: " + strings.Join(msgs, "; "))
}
