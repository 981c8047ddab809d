package handler

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/deppfellow/itemsvc/internal/errs"
	"github.com/deppfellow/itemsvc/internal/model"
	"github.com/deppfellow/itemsvc/internal/server"
	"github.com/deppfellow/itemsvc/internal/service"
	"github.com/deppfellow/itemsvc/internal/validation"
	"github.com/labstack/echo/v4"
)

// ItemInput is the JSON body shared by create and update.
type ItemInput struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
}

// normalize trims the title. The description is stored as sent.
func (in *ItemInput) normalize() {
	in.Title = trimTitle(in.Title)
}

// trimTitle strips leading and trailing white space, counting the byte
// order mark as white space.
func trimTitle(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

func (in *ItemInput) description() string {
	if in.Description == nil {
		return ""
	}
	return *in.Description
}

// CreateItemRequest is the body of POST /api/items.
type CreateItemRequest struct {
	ItemInput
}

func (r *CreateItemRequest) Validate() error {
	r.normalize()
	return validation.Struct(r)
}

// ItemIDRequest carries the :id path parameter. The raw string is bound and
// parsed in Validate so a malformed id yields a field error, not a binder
// message.
type ItemIDRequest struct {
	RawID string `param:"id" json:"-"`
	ID    int64  `json:"-"`
}

func (r *ItemIDRequest) parseID() *validation.CustomValidationError {
	id, err := strconv.ParseInt(strings.TrimSpace(r.RawID), 10, 64)
	if err != nil {
		return &validation.CustomValidationError{Field: "id", Message: "must be an integer"}
	}
	r.ID = id
	return nil
}

// UpdateItemRequest is PUT /api/items/:id.
type UpdateItemRequest struct {
	ItemIDRequest
	ItemInput
}

func (r *UpdateItemRequest) Validate() error {
	r.normalize()
	var problems validation.CustomValidationErrors
	if problem := r.parseID(); problem != nil {
		problems = append(problems, *problem)
	}
	if r.Title == "" {
		problems = append(problems, validation.CustomValidationError{Field: "title", Message: "is required"})
	}
	if len(problems) > 0 {
		return problems
	}
	return nil
}

// DeleteItemRequest is DELETE /api/items/:id.
type DeleteItemRequest struct {
	ItemIDRequest
}

func (r *DeleteItemRequest) Validate() error {
	if problem := r.parseID(); problem != nil {
		return validation.CustomValidationErrors{*problem}
	}
	return nil
}

// DeleteItemResponse is the body of a successful delete.
type DeleteItemResponse struct {
	Deleted bool `json:"deleted"`
}

// ItemHandler serves the items resource.
type ItemHandler struct {
	Handler
	items *service.ItemService
}

func NewItemHandler(s *server.Server, items *service.ItemService) *ItemHandler {
	return &ItemHandler{
		Handler: NewHandler(s),
		items:   items,
	}
}

func (h *ItemHandler) ListItems(c echo.Context, _ *EmptyRequest) ([]model.Item, error) {
	items, err := h.items.ListItems(c.Request().Context())
	if err != nil {
		return nil, errs.NewInternalServerError().WithMessage("Failed to list items").WithCause(err)
	}
	return items, nil
}

func (h *ItemHandler) CreateItem(c echo.Context, req *CreateItemRequest) (*model.Item, error) {
	item, err := h.items.CreateItem(c.Request().Context(), req.Title, req.description())
	if err != nil {
		return nil, errs.NewInternalServerError().WithMessage("Failed to create item").WithCause(err)
	}
	return item, nil
}

func (h *ItemHandler) UpdateItem(c echo.Context, req *UpdateItemRequest) (*model.Item, error) {
	item, ok, err := h.items.UpdateItem(c.Request().Context(), req.ID, req.Title, req.description())
	if err != nil {
		return nil, errs.NewInternalServerError().WithMessage("Failed to update item").WithCause(err)
	}
	if !ok {
		return nil, errs.NewNotFoundError("Item not found", false, nil)
	}
	return item, nil
}

func (h *ItemHandler) DeleteItem(c echo.Context, req *DeleteItemRequest) (DeleteItemResponse, error) {
	deleted, err := h.items.DeleteItem(c.Request().Context(), req.ID)
	if err != nil {
		return DeleteItemResponse{}, errs.NewInternalServerError().WithMessage("Failed to delete item").WithCause(err)
	}
	if !deleted {
		return DeleteItemResponse{}, errs.NewNotFoundError("Item not found", false, nil)
	}
	return DeleteItemResponse{Deleted: true}, nil
}
