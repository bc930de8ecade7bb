package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/pagination"
)

func TestParsePaginationDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	p, err := ParsePagination(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 1 || p.Limit != pagination.DefaultLimit {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestParsePaginationRejectsOversizedLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=500", nil)
	if _, err := ParsePagination(req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?minPrice=150.50&maxPrice=abc", nil)
	min, err := ParseQueryDecimal(req, "minPrice")
	if err != nil || min == nil || min.String() != "150.5" {
		t.Fatalf("unexpected min %v err %v", min, err)
	}
	if _, err := ParseQueryDecimal(req, "maxPrice"); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
	absent, err := ParseQueryDecimal(req, "missing")
	if err != nil || absent != nil {
		t.Fatalf("expected nil for absent parameter, got %v %v", absent, err)
	}
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?inStock=true&organic=maybe", nil)
	if v, err := ParseQueryBool(req, "inStock"); err != nil || !v {
		t.Fatalf("expected true, got %v %v", v, err)
	}
	if _, err := ParseQueryBool(req, "organic"); err == nil {
		t.Fatal("expected error for invalid boolean")
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	type payload struct {
		Email    string `json:"email" validate:"required,email"`
		Quantity int    `json:"quantity" validate:"min=1"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","quantity":0}`))
	var dest payload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["email"] == "" || details["quantity"] == "" {
		t.Fatalf("expected both fields reported, got %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	var dest payload
	if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
