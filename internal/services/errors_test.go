package services_test

import (
	"errors"
	"strings"
	"testing"

	"spotgrid/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrPersistence, "assignment", "replace", "write rejected", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"assignment", "replace", "write rejected"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFailureOutcomeMapping(t *testing.T) {
	invalid := services.Wrap(services.ErrValidation, "assignment", "validate", "missing market", nil)
	if got := services.FailureOutcome(invalid); got != services.OutcomeInvalid {
		t.Fatalf("expected %s for validation error, got %s", services.OutcomeInvalid, got)
	}

	missing := services.Wrap(services.ErrNotFound, "assignment", "load", "spot 9", nil)
	if got := services.FailureOutcome(missing); got != services.OutcomeMissing {
		t.Fatalf("expected %s for not found error, got %s", services.OutcomeMissing, got)
	}

	write := services.Wrap(services.ErrPersistence, "assignment", "replace", "", errors.New("io"))
	if got := services.FailureOutcome(write); got != services.OutcomeError {
		t.Fatalf("expected %s for persistence error, got %s", services.OutcomeError, got)
	}
}
