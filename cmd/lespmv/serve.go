package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lespmv/internal/api"
	"github.com/samcharles93/lespmv/internal/harness"
	"github.com/samcharles93/lespmv/internal/logger"
	"github.com/samcharles93/lespmv/internal/webui"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		dataDir     string
		readTimeout time.Duration
	)

	flags := append(layoutFlags(), benchFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "listen address",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "directory that request paths are resolved in (empty: synthetic inputs only)",
			Destination: &dataDir,
		},
		&cli.DurationFlag{
			Name:        "read-timeout",
			Usage:       "read timeout",
			Value:       30 * time.Second,
			Destination: &readTimeout,
		},
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the runs API",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, LoadConfig(), &addr, &dataDir)

			defaults, err := buildConfig(harness.StageBenchmark)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 2)
			}

			service := api.NewRunService(defaults, dataDir)
			server := api.NewServer(api.NewRunStore(), service)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c *echo.Context) error {
					r := c.Request()
					c.SetRequest(r.WithContext(logger.WithContext(r.Context(), log)))
					return next(c)
				}
			})
			server.Register(e)
			e.GET("/", echo.WrapHandler(http.FileServer(webui.StaticFS())))
			log.Info("starting server", "address", addr, "data_dir", dataDir, "workers", service.Workers())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
