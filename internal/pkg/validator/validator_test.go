package validator

import "testing"

type adjustInput struct {
	Delta  int64  `json:"delta" validate:"ne=0"`
	Reason string `json:"reason" validate:"required,notblank,max=500"`
	Role   string `json:"role" validate:"omitempty,role"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	errs := Validate(&adjustInput{Delta: 0, Reason: "   ", Role: "owner"})
	if errs == nil {
		t.Fatal("expected errors")
	}
	if errs["delta"] != "Value must not be 0" {
		t.Fatalf("unexpected delta error %q", errs["delta"])
	}
	if errs["reason"] != "Value must not be blank" {
		t.Fatalf("unexpected reason error %q", errs["reason"])
	}
	if errs["role"] == "" {
		t.Fatal("expected role error")
	}
}

func TestValidatePasses(t *testing.T) {
	if errs := Validate(&adjustInput{Delta: -10, Reason: "goodwill", Role: "admin"}); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}
