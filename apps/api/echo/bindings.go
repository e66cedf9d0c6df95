package echoapi

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Username = core.CleanString(r.Username)
	return validate.Struct(r)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

type BatchTransitionRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1"`
	Status  string   `json:"status" validate:"required"`
}

func (r *BatchTransitionRequest) Validate(validate *validator.Validate) error {
	r.Status = core.CleanString(r.Status)
	return validate.Struct(r)
}

type PatchProgressRequest struct {
	Progress map[string]string `json:"progress" validate:"required"`
}
