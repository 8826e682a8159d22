/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/labwave/client"
	"github.com/humaidq/labwave/db"
	"github.com/humaidq/labwave/routes"
	"github.com/humaidq/labwave/static"
	"github.com/humaidq/labwave/templates"
	"github.com/humaidq/labwave/viewer"
)

const evictInterval = 10 * time.Minute

var CmdStart = &cli.Command{
	Name:    "start",
	Aliases: []string{"run"},
	Usage:   "Start the web server",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Sources: cli.EnvVars("PORT"),
			Value:   "8080",
			Usage:   "the web server port",
		},
		databaseFlag(),
		&cli.StringFlag{
			Name:    "redis-url",
			Sources: cli.EnvVars("REDIS_URL"),
			Usage:   "Redis URL of the research lookup cache (e.g., redis://localhost:6379/0)",
		},
		&cli.StringFlag{
			Name:    "csrf-secret",
			Sources: cli.EnvVars("CSRF_SECRET"),
			Usage:   "secret used to sign CSRF tokens",
		},
		&cli.StringFlag{
			Name:    "api-url",
			Sources: cli.EnvVars("LABWAVE_API_URL"),
			Usage:   "base URL of the upload API used by the viewer (defaults to this server)",
		},
		&cli.StringFlag{
			Name:    "public-url",
			Sources: cli.EnvVars("PUBLIC_URL"),
			Usage:   "public base URL encoded in report QR codes",
		},
		&cli.StringFlag{
			Name:    "ncbi-email",
			Sources: cli.EnvVars("NCBI_EMAIL"),
			Usage:   "contact email sent with PubMed requests",
		},
		&cli.BoolFlag{
			Name:  "dev",
			Value: false,
			Usage: "enables development mode (for templates)",
		},
	}, llmFlags()...),
	Action: start,
}

func start(ctx context.Context, cmd *cli.Command) (err error) {
	dev := cmd.Bool("dev")

	csrfSecret := cmd.String("csrf-secret")
	if csrfSecret == "" {
		if !dev {
			return errCSRFSecretRequired
		}

		csrfSecret = uuid.NewString()
	}

	connected, err := connectDatabase(ctx, cmd.String("database-url"))
	if err != nil {
		return err
	}

	if connected {
		defer db.Close()
	} else {
		appLogger.Warn("DATABASE_URL not set, processed reports will not be stored")
	}

	library := newLibrary(ctx, cmd)

	cache := openResearchCache(ctx, cmd.String("redis-url"))
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				appLogger.Warn("Failed to close research cache", "error", err)
			}
		}()
	}

	processor, err := newProcessor(cmd, library, cache)
	if err != nil {
		appLogger.Warn("Report processor not initialized", "error", err)
	}

	port := cmd.String("port")

	apiURL := cmd.String("api-url")
	if apiURL == "" {
		apiURL = fmt.Sprintf("http://127.0.0.1:%s/api/", port)
	}

	svc := &routes.Services{
		Viewers: viewer.NewRegistry(viewer.DefaultIdleTimeout),
		Submitter: func(userID string) viewer.Submitter {
			return client.New(apiURL).WithUserID(userID)
		},
		PublicURL: cmd.String("public-url"),
	}

	// A nil *pipeline.Processor must stay a nil interface for the health check.
	if processor != nil {
		svc.Processor = processor
	}

	go evictViewers(ctx, svc.Viewers)

	f, err := newFlame(svc, csrfSecret, dev)
	if err != nil {
		return err
	}

	appLogger.Info("Starting web server", "port", port, "api_url", apiURL, "storage", connected)

	srv := &http.Server{
		Addr:     fmt.Sprintf("0.0.0.0:%s", port),
		Handler:  f,
		ErrorLog: requestStdLogger,
		// Uploads wait for the whole pipeline, which makes several LLM calls.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}

	return nil
}

func newFlame(svc *routes.Services, csrfSecret string, dev bool) (*flamego.Flame, error) {
	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(routes.RequestLogger)

	tmplOpts := template.Options{Directory: "templates"}
	if !dev {
		fs, err := template.EmbedFS(templates.Templates, ".", []string{".html"})
		if err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}

		tmplOpts = template.Options{FileSystem: fs}
	}

	f.Use(flamego.Static(flamego.StaticOptions{
		FileSystem: http.FS(static.Static),
		Prefix:     "static",
	}))
	f.Use(template.Templater(tmplOpts))
	f.Use(routes.PrivateHeaders())
	f.Map(svc)

	configureNotFoundHandler(f)

	f.Group("/api", func() {
		f.Get("/health", routes.APIHealth)
		f.Post("/upload", routes.APIUpload)
		f.Get("/reports", routes.APIListReports)
	})

	// Browser pages carry a session and CSRF-protected forms.
	f.Group("", func() {
		f.Get("/reports/{id}", routes.ViewReport)
		f.Get("/reports/{id}/export.xlsx", routes.ExportReport)
		f.Get("/reports/{id}/qr.png", routes.ReportQRCode)

		f.Get("/", routes.Home)
		f.Get("/{mode}", routes.ModePage)
		f.Post("/{mode}/upload", routes.LimitUploadBody(), csrf.Validate, routes.ModeUpload)
		f.Post("/{mode}/reset", csrf.Validate, routes.ModeReset)
	}, session.Sessioner(), csrf.Csrfer(csrf.Options{Secret: csrfSecret}), routes.PageData())

	return f, nil
}

func configureNotFoundHandler(f *flamego.Flame) {
	f.NotFound(func(t template.Template, data template.Data) {
		data["PageTitle"] = "Not Found"
		t.HTML(http.StatusNotFound, "not_found")
	})
}

// evictViewers drops idle viewer sessions until ctx is done.
func evictViewers(ctx context.Context, r *viewer.Registry) {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				appLogger.Debug("Evicted idle viewer sessions", "count", n)
			}
		}
	}
}
