package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeForbidden, http.StatusForbidden},
		{CodeProfileIncomplete, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Errorf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "identity provider call")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if CodeOf(err) != CodeDependency {
		t.Fatalf("expected dependency code, got %s", CodeOf(err))
	}
}

func TestAsThroughFmtWrapping(t *testing.T) {
	inner := New(CodeForbidden, "not a super admin")
	outer := fmt.Errorf("handling request: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeForbidden {
		t.Fatalf("expected forbidden, got %s", typed.Code())
	}
}

func TestCodeOfUntypedError(t *testing.T) {
	if got := CodeOf(stdErrors.New("plain")); got != CodeInternal {
		t.Fatalf("expected internal for untyped error, got %s", got)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "missing fields").WithDetails(map[string]any{"fields": []string{"first_name"}})
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatal("expected detail map")
	}
	if _, ok := details["fields"]; !ok {
		t.Fatal("expected fields detail key")
	}
}
