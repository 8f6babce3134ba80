package validate

import (
	"strings"
	"testing"

	"github.com/fkhayef/groupapply/pkg/apperr"
)

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=1"`
}

func TestStruct(t *testing.T) {
	if err := Struct(&sample{Name: "a", Count: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Struct(&sample{Count: 0})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "sample.Name failed required") || !strings.Contains(err.Error(), "sample.Count failed min") {
		t.Errorf("message = %q", err.Error())
	}
}
