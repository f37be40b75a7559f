package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quantityBody struct {
	Quantity int    `json:"quantity" validate:"min=0,max=999"`
	Note     string `json:"note" validate:"max=5"`
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":-1,"note":"too long"}`))
	var body quantityBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details := typed.Details().(map[string]string)
	assert.Equal(t, "must be at least 0", details["quantity"])
	assert.Equal(t, "must be at most 5", details["note"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":1,"price":"1.00"}`))
	var body quantityBody
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&page=abc", nil)

	_, err := ParseQueryInt(req, "limit", 20, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseQueryInt(req, "page", 1, 1, 10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	v, err := ParseQueryInt(req, "missing", 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?min_price=99.50&max_price=-1&bad=x", nil)

	v, err := ParseQueryDecimal(req, "min_price")
	require.NoError(t, err)
	assert.Equal(t, "99.5", v.String())

	_, err = ParseQueryDecimal(req, "max_price")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseQueryDecimal(req, "bad")
	assert.Error(t, err)

	v, err = ParseQueryDecimal(req, "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", id.String())
	rctx.URLParams.Add("orderId", "not-a-uuid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(req, "productId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(req, "orderId")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParsePageRequestDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	page, err := ParsePageRequest(req)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 12, page.PageSize)
}

func TestSanitizeStringCutsOnCharacters(t *testing.T) {
	cases := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "ascii", input: "  velvet sofa  ", max: 6, want: "velvet"},
		{name: "cyrillic", input: "Диван бархатный", max: 5, want: "Диван"},
		{name: "trailing space after cut", input: "Кресло и стол", max: 7, want: "Кресло"},
		{name: "emoji", input: "🛋️🛋️🛋️", max: 1, want: "🛋"},
		{name: "under limit", input: "Лампа", max: 10, want: "Лампа"},
		{name: "no limit", input: " Стол ", max: 0, want: "Стол"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeString(tc.input, tc.max)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}

	long := strings.Repeat("ж", 300)
	got := SanitizeString(long, 100)
	assert.Equal(t, 100, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}
