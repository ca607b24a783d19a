package bootstrap

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpecho "github.com/mohammadpnp/candidate-import/internal/interfaces/http/echo"
)

type HTTPOptions struct {
	BodyLimit      string
	MetricsEnabled bool
}

func NewHTTPServer(handler *httpecho.BulkImportHandler, opts HTTPOptions) *echo.Echo {
	if opts.BodyLimit == "" {
		opts.BodyLimit = "10M"
	}

	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit(opts.BodyLimit))

	httpecho.RegisterRoutes(server, handler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.MetricsEnabled {
		server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	return server
}
