package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	var payload loginPayload
	err := DecodeJSONBody(postJSON(`{"email":"eater@example.com","password":"supersecret"}`), &payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Email != "eater@example.com" {
		t.Fatalf("unexpected email %q", payload.Email)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var payload loginPayload
	err := DecodeJSONBody(postJSON(`{"email":"eater@example.com","password":"supersecret","extra":true}`), &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	var payload loginPayload
	err := DecodeJSONBody(postJSON(`{`), &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	var payload loginPayload
	err := DecodeJSONBody(postJSON(`{"email":"not-an-email","password":"short"}`), &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email message %q", details["email"])
	}
	if details["password"] != "must be at least 8" {
		t.Fatalf("unexpected password message %q", details["password"])
	}
}
