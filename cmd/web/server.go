package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	mw "inserview.studio/web/internal/middleware"
)

const (
	shutdownGrace = 10 * time.Second
	sweepInterval = 5 * time.Minute
)

// routes builds the HTTP handler.
func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if a.cfg.Server.TrustProxy {
		// forwarding headers are only rewritten into RemoteAddr behind a known proxy
		r.Use(middleware.RealIP)
	}
	r.Use(mw.HTMX)
	r.Use(a.sessions.Middleware)
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.DocLanguage(a.cfg.Site.DocLanguage))
	r.Use(mw.CSRF(a.cfg.Session.Secure))
	r.Use(mw.VaryLocale)
	r.Use(mw.Logger(a.logger, a.metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(a.cfg.Server.RequestTimeout))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	if a.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, a.cfg.Metrics.Path, a.metrics.Handler())
	}

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(a.cfg.Paths.Public, "assets"), a.cfg.Site.DevMode))
	r.Handle("/assets/*", assets)

	r.Get("/sitemap.xml", a.handleSitemap)
	r.Get("/navigate/{section}", a.handleNavigate)
	r.Post("/contact", a.handleContact)

	// every other path belongs to the route table, including its not-found page
	r.Get("/*", a.handlePage)
	return r
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func (a *app) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           a.routes(),
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.Bool("dev_mode", a.cfg.Site.DevMode),
			zap.String("env", a.cfg.Site.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := a.limiter.Sweep(); n > 0 {
					a.logger.Debug("contact limiter swept", zap.Int("clients", n))
				}
			}
		}
	})
	return g.Wait()
}
