package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core/template"
	"github.com/pownas/dancecourse/core/user"
)

type templateApi struct {
	svc      *template.Service
	validate *validator.Validate
}

func registerTemplateAPI(g *echo.Group, svc *template.Service, validate *validator.Validate) {
	api := templateApi{svc: svc, validate: validate}

	g.GET("", api.query)
	g.POST("", api.create, requirePermission(user.PermAuthor))
	g.GET("/team/:teamId", api.queryTeam)

	// detail endpoints
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
	g.POST("/:id/duplicate", api.duplicate)
}

func (api *templateApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	filter := new(template.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to template.QueryFilter")
	}

	page, err := api.svc.Query(ctx.Request().Context(), *filter, usr)
	if err != nil {
		return errors.Wrap(err, "querying templates")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *templateApi) queryTeam(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	templates, err := api.svc.QueryTeam(ctx.Request().Context(), ctx.Param("teamId"), usr)
	if err != nil {
		return errors.Wrap(err, "querying team templates")
	}
	if templates == nil {
		templates = []template.Template{}
	}
	return ctx.JSON(http.StatusOK, templates)
}

func (api *templateApi) create(ctx echo.Context) error {
	var data template.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating template")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *templateApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), usr)
	if err != nil {
		return errors.Wrap(err, "getting template")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *templateApi) update(ctx echo.Context) error {
	var data template.UpdateTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, usr)
	if err != nil {
		return errors.Wrap(err, "updating template")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *templateApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), usr); err != nil {
		return errors.Wrap(err, "deleting template")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *templateApi) duplicate(ctx echo.Context) error {
	var data template.Duplicate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Duplicate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.Duplicate(ctx.Request().Context(), ctx.Param("id"), data, usr)
	if err != nil {
		return errors.Wrap(err, "duplicating template")
	}
	return ctx.JSON(http.StatusOK, res)
}
