package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/itemsvc/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateItemRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateItemRequest
		wantErr   bool
		wantTitle string
		wantDesc  string
	}{
		{name: "trims title", req: CreateItemRequest{ItemInput{Title: "  Buy milk \n"}}, wantTitle: "Buy milk"},
		{name: "keeps description", req: CreateItemRequest{ItemInput{Title: "a", Description: strPtr(" b ")}}, wantTitle: "a", wantDesc: " b "},
		{name: "empty title", req: CreateItemRequest{ItemInput{Title: ""}}, wantErr: true},
		{name: "whitespace title", req: CreateItemRequest{ItemInput{Title: " \t "}}, wantErr: true},
		{name: "byte order mark title", req: CreateItemRequest{ItemInput{Title: "\uFEFF"}}, wantErr: true},
		{name: "trims unicode spaces", req: CreateItemRequest{ItemInput{Title: "\uFEFF Buy milk\u00A0\u2003"}}, wantTitle: "Buy milk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, tt.req.Title)
			assert.Equal(t, tt.wantDesc, tt.req.description())
		})
	}
}

func TestUpdateItemRequestValidate(t *testing.T) {
	req := UpdateItemRequest{ItemIDRequest: ItemIDRequest{RawID: "42"}, ItemInput: ItemInput{Title: " x "}}
	require.NoError(t, req.Validate())
	assert.Equal(t, int64(42), req.ID)
	assert.Equal(t, "x", req.Title)

	bad := UpdateItemRequest{ItemIDRequest: ItemIDRequest{RawID: "x"}, ItemInput: ItemInput{Title: ""}}
	err := bad.Validate()

	var problems validation.CustomValidationErrors
	require.ErrorAs(t, err, &problems)
	assert.Equal(t, validation.CustomValidationErrors{
		{Field: "id", Message: "must be an integer"},
		{Field: "title", Message: "is required"},
	}, problems)
}

func TestDeleteItemRequestValidate(t *testing.T) {
	req := DeleteItemRequest{ItemIDRequest{RawID: "7"}}
	require.NoError(t, req.Validate())
	assert.Equal(t, int64(7), req.ID)

	assert.Error(t, (&DeleteItemRequest{ItemIDRequest{RawID: ""}}).Validate())
}

// Handle must give every request its own value; a shared one would leak
// fields between requests.
func TestHandleAllocatesPerRequest(t *testing.T) {
	var seen []*CreateItemRequest
	h := Handle(Handler{}, func(c echo.Context, req *CreateItemRequest) (string, error) {
		seen = append(seen, req)
		return req.description(), nil
	}, http.StatusOK, NewRequest[CreateItemRequest])

	e := echo.New()
	bodies := []string{`{"title":"a","description":"first"}`, `{"title":"b"}`}
	var got []string
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		got = append(got, strings.TrimSpace(rec.Body.String()))
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
	assert.Equal(t, []string{`"first"`, `""`}, got)
}
