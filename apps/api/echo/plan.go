package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/plan"
)

type planApi struct {
	svc      *plan.Service
	validate *validator.Validate
}

func registerPlanAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *plan.Service, validate *validator.Validate) {
	api := planApi{svc: svc, validate: validate}

	pg := g.Group("/plans", jwt)
	pg.POST("", api.publish, teacherMiddleware())
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.DELETE("/:id", api.deactivate, teacherMiddleware())
	pg.PATCH("/:id/progress", api.patchProgress, teacherMiddleware())
}

// publish runs the full publication pipeline and returns the created plan with
// its statistics; partial-skip details ride along in the payload.
func (api *planApi) publish(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data plan.PublishRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PublishRequest")
	}
	// scope always comes from the token, never from the body
	data.SchoolID = claims.SchoolID
	if data.TeacherID == "" || !claims.IsAdmin {
		data.TeacherID = claims.Subject
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Publish(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *planApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var filter plan.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.SchoolID = claims.SchoolID
	filter.Clean()

	plans, total, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"results": plans,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

func (api *planApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.SchoolID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *planApi) deactivate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.Deactivate(ctx.Request().Context(), ctx.Param("id"), claims.SchoolID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *planApi) patchProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data PatchProgressRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PatchProgressRequest")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	p, err := api.svc.PatchProgress(ctx.Request().Context(), ctx.Param("id"), claims.SchoolID, data.Progress)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
