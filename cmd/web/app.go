package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"inserview.studio/web/internal/config"
	"inserview.studio/web/internal/contact"
	"inserview.studio/web/internal/handlers"
	"inserview.studio/web/internal/i18n"
	"inserview.studio/web/internal/legal"
	mw "inserview.studio/web/internal/middleware"
	"inserview.studio/web/internal/navigation"
	"inserview.studio/web/internal/observability"
	"inserview.studio/web/internal/routing"
)

// app holds the long-lived collaborators shared by all handlers.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	bundle    *i18n.Bundle
	table     *routing.Table
	store     *navigation.Store
	library   *legal.Library
	contact   *contact.Service
	limiter   *contact.Limiter
	sessions  *mw.Sessions
	views     *renderer
	sections  *sectionCache
	analytics handlers.Analytics

	closers []io.Closer
}

// appOption swaps collaborators, mostly for tests.
type appOption func(*appDeps)

type appDeps struct {
	repo   navigation.Repository
	sender contact.Sender
}

func withRepository(repo navigation.Repository) appOption {
	return func(d *appDeps) { d.repo = repo }
}

func withSender(s contact.Sender) appOption {
	return func(d *appDeps) { d.sender = s }
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...appOption) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := appDeps{}
	for _, opt := range opts {
		opt(&deps)
	}

	bundle, err := i18n.Load(cfg.Paths.Locales, cfg.Site.DefaultLocale, cfg.Site.Locales)
	if err != nil {
		return nil, fmt.Errorf("load i18n: %w", err)
	}
	views, err := newRenderer(cfg.Paths.Templates, cfg.Site.DevMode, bundle)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   observability.NewMetrics(),
		bundle:    bundle,
		table:     routing.Default(),
		library:   legal.NewLibrary(cfg.Paths.Content, cfg.Location.ContentCacheTTL),
		sessions:  mw.NewSessions(cfg.Session.SigningKey, cfg.Session.Secure),
		views:     views,
		analytics: handlers.AnalyticsFrom(cfg.Analytics),
	}
	if a.sessions.Ephemeral() {
		logger.Warn("session signing key not set; using an ephemeral key")
	}

	repo := deps.repo
	if repo == nil {
		repo, err = a.openRepository(ctx)
		if err != nil {
			return nil, err
		}
	}
	ctrl := navigation.NewController(a.table, routing.HomePath)
	a.store = navigation.NewStore(ctrl, repo, navigation.WithObserver(a.observeTransition))

	sender := deps.sender
	if sender == nil {
		sender = contact.NewEmailJS(cfg.Contact)
	}
	if !sender.Configured() {
		logger.Warn("contact delivery is not configured; submissions will be refused")
	}
	a.limiter = contact.NewLimiter(cfg.Contact.RequestsPerMinute, cfg.Contact.Burst)
	a.contact = contact.NewService(sender, a.limiter, cfg.Contact.RecipientEmail, contact.WithMetrics(a.metrics))
	a.sections = newSectionCache(a.renderSections)
	a.sections.bypass = cfg.Site.DevMode
	return a, nil
}

func (a *app) openRepository(ctx context.Context) (navigation.Repository, error) {
	if a.cfg.Location.RedisURL == "" {
		return navigation.NewMemoryRepository(a.cfg.Location.TTL), nil
	}
	repo, err := navigation.NewRedisRepository(ctx, a.cfg.Location.RedisURL, a.cfg.Location.TTL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, repo)
	a.logger.Info("visitor locations stored in redis")
	return repo, nil
}

func (a *app) observeTransition(tr navigation.Transition) {
	a.logger.Debug("navigation transition",
		zap.String("visitor", tr.Visitor),
		zap.Stringer("intent", tr.Intent.Kind),
		zap.String("target", tr.Intent.Target),
		zap.String("from", tr.Before.Path),
		zap.String("to", tr.After.Path),
		zap.String("pending_anchor", tr.After.PendingAnchor),
		zap.Bool("mounted", tr.Mounted),
	)
}

func (a *app) countIntent(kind, outcome string) {
	a.metrics.NavigationIntents.WithLabelValues(kind, outcome).Inc()
}

// Close releases external connections.
func (a *app) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
