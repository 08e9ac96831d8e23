package http

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
)

const apiPrefix = "/api/"

// requestValidator checks API requests against doc: path parameters, required
// bodies and body schemas. Requests outside the API, or that doc does not
// describe, pass through and are left to echo's routing.
func requestValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build request validator: %w", err)
	}
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			if !strings.HasPrefix(req.URL.Path, apiPrefix) {
				return next(ctx)
			}
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				return next(ctx)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return badRequest(ctx, validationMessage(err))
			}
			return next(ctx)
		}
	}, nil
}

// validationMessage keeps the first line; schema errors append the whole
// offending value after it.
func validationMessage(err error) string {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return "Invalid request: " + msg
}
