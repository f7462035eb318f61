package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core/pattern"
	"github.com/pownas/dancecourse/core/user"
)

type patternApi struct {
	svc      *pattern.Service
	validate *validator.Validate
}

func registerPatternAPI(g *echo.Group, svc *pattern.Service, validate *validator.Validate) {
	api := patternApi{svc: svc, validate: validate}

	g.GET("", api.query)
	g.POST("", api.create, requirePermission(user.PermAuthor))
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
}

func (api *patternApi) query(ctx echo.Context) error {
	filter := new(pattern.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to pattern.QueryFilter")
	}
	filter.Clean()

	patterns, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying patterns")
	}
	if patterns == nil {
		patterns = []pattern.Pattern{}
	}
	return ctx.JSON(http.StatusOK, patterns)
}

func (api *patternApi) create(ctx echo.Context) error {
	var data pattern.NewPattern
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPattern")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating pattern")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *patternApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting pattern")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *patternApi) update(ctx echo.Context) error {
	var data pattern.UpdatePattern
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePattern")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, usr)
	if err != nil {
		return errors.Wrap(err, "updating pattern")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *patternApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), usr); err != nil {
		return errors.Wrap(err, "deleting pattern")
	}
	return ctx.NoContent(http.StatusNoContent)
}
