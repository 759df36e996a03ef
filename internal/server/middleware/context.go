package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/zhiwen/backend/internal/service"
)

// App bundles the shared application state handlers need.
type App struct {
	Service *service.Service
}

// AppContext wraps the echo context with the application state.
type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(svc *service.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, &App{Service: svc}}
			return next(cc)
		}
	}
}
