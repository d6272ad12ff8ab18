package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@example.com","password":"secret1"}`))

	var payload samplePayload
	if err := DecodeJSONBody(req, &payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.Email != "a@example.com" {
		t.Fatalf("unexpected email %q", payload.Email)
	}
}

func TestDecodeJSONBodyMalformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyValidationDetailsUseJSONNames(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email","password":"ab"}`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if details["password"] != "must be at least 6" {
		t.Fatalf("unexpected password detail %q", details["password"])
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@example.com","password":"secret1","extra":true}`))

	var payload samplePayload
	if err := DecodeJSONBody(req, &payload); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}
