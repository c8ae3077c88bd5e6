package adminapi

import (
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/prodcatalog/internal/app"
)

const appContextKey = "appCtx"

var registerOnce sync.Once

// Init registers every API route with the webserver. Safe to call more than
// once.
func Init() {
	registerOnce.Do(func() {
		registerRootRoutes()
		registerProductRoutes()
	})
}

// AppContextMiddleware makes appCtx available to handlers via GetAppContext.
func AppContextMiddleware(appCtx app.AppContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appCtx)
			return next(c)
		}
	}
}

// GetAppContext returns the application context installed by
// AppContextMiddleware.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(appContextKey).(app.AppContext)
}
