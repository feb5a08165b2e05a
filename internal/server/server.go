// Package server exposes the QA pipeline over HTTP. Transport only: request
// validation and JSON rendering live here, every answering decision lives in
// the rag package.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"riskrag/internal/rag"
)

// New builds the echo instance with all routes registered.
func New(pipeline *rag.Pipeline) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	h := &Handler{Pipeline: pipeline, Logger: log.New(log.Writer(), "[API] ", log.LstdFlags)}

	e.GET("/", h.root)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/preguntar", h.ask)
	e.GET("/buscar", h.search)

	return e
}

// Run starts the server and blocks.
func Run(pipeline *rag.Pipeline, addr string) error {
	e := New(pipeline)
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
