package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentApi struct {
	svc      *assignment.Service
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *assignment.Service, validate *validator.Validate) {
	api := assignmentApi{svc: svc, validate: validate}

	ig := g.Group("/items", jwt)
	ig.PATCH("/:id/status", api.transition)
	ig.POST("/status", api.batchTransition)
	ig.PATCH("/:id/attempt", api.markAttempt)

	sg := g.Group("/students/:studentID", jwt)
	sg.GET("/board", api.dailyBoard)
	sg.GET("/history", api.history)
	sg.POST("/items", api.createAdHoc, teacherMiddleware())
}

func (api *assignmentApi) transition(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data TransitionRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TransitionRequest")
	}

	item, err := api.svc.Transition(
		ctx.Request().Context(), ctx.Param("id"),
		assignment.Status(data.Status), claims.Subject, claims.SchoolID,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *assignmentApi) batchTransition(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data BatchTransitionRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BatchTransitionRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res := api.svc.BatchTransition(
		ctx.Request().Context(), data.ItemIDs,
		assignment.Status(data.Status), claims.Subject, claims.SchoolID,
	)
	return ctx.JSON(http.StatusOK, res)
}

func (api *assignmentApi) markAttempt(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.MarkAttempt(ctx.Request().Context(), ctx.Param("id"), claims.SchoolID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *assignmentApi) dailyBoard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	targetDate := time.Now()
	if raw := ctx.QueryParam("date"); raw != "" {
		targetDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		}
	}

	items, err := api.svc.DailyBoard(ctx.Request().Context(), claims.SchoolID, ctx.Param("studentID"), targetDate)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *assignmentApi) history(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	var ord Ordering
	ord.Bind(ctx)

	items, err := api.svc.History(ctx.Request().Context(), claims.SchoolID, ctx.Param("studentID"), limit, ord.Orderings...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *assignmentApi) createAdHoc(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var def assignment.TaskDef
	if err = ctx.Bind(&def); err != nil {
		return errors.Wrap(err, "binding to TaskDef")
	}

	item, err := api.svc.CreateAdHoc(ctx.Request().Context(), claims.SchoolID, ctx.Param("studentID"), claims.Subject, def)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}
