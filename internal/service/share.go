package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/mediapro/studio/internal/apperror"
	"github.com/mediapro/studio/internal/model"
	"github.com/mediapro/studio/internal/store"
)

// ShareService mints and resolves shareable links.
//
// A minted link is a random slug with an expiry derived from the configured
// link-expiry setting. The slug is an xid — sortable, URL-safe, and
// practically collision-free. Expired links are purged when resolved.
type ShareService struct {
	docs   *store.Documents
	clock  Clock
	logger *slog.Logger
}

// NewShareService creates a ShareService.
func NewShareService(docs *store.Documents, clock Clock, logger *slog.Logger) *ShareService {
	return &ShareService{
		docs:   docs,
		clock:  clock,
		logger: logger,
	}
}

// Mint creates a new share link for the named file. Fails with
// ErrFeatureDisabled when an admin has switched link generation off —
// the flag read and the write happen under one lock, so a concurrent
// disable can't slip a link in.
func (s *ShareService) Mint(ctx context.Context, actor *model.User, name string) (model.ShareLink, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	flags, err := s.docs.Features(ctx)
	if err != nil {
		return model.ShareLink{}, fmt.Errorf("service/share: minting link: %w", err)
	}
	if !flags.Enabled(model.FeatureShare) {
		return model.ShareLink{}, apperror.FeatureDisabled(string(model.FeatureShare))
	}

	settings, err := s.docs.Settings(ctx)
	if err != nil {
		return model.ShareLink{}, fmt.Errorf("service/share: minting link: %w", err)
	}

	now := s.clock.Now()
	link := model.ShareLink{
		Slug:      xid.New().String(),
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, settings.LinkExpiryDays),
	}
	if actor != nil {
		link.CreatedBy = actor.DisplayName()
	}

	links, err := s.docs.ShareLinks(ctx)
	if err != nil {
		return model.ShareLink{}, fmt.Errorf("service/share: minting link: %w", err)
	}
	links[link.Slug] = link

	if err := s.docs.SaveShareLinks(ctx, links); err != nil {
		return model.ShareLink{}, fmt.Errorf("service/share: minting link: %w", err)
	}

	s.logger.Info("share link minted",
		slog.String("slug", link.Slug),
		slog.Time("expiresAt", link.ExpiresAt),
	)

	return link, nil
}

// Resolve looks up a link by slug. An expired link is purged (the purge is
// persisted) and reported as not found, same as a slug that never existed.
func (s *ShareService) Resolve(ctx context.Context, slug string) (model.ShareLink, error) {
	s.docs.Lock()
	defer s.docs.Unlock()

	links, err := s.docs.ShareLinks(ctx)
	if err != nil {
		return model.ShareLink{}, fmt.Errorf("service/share: resolving link: %w", err)
	}

	link, ok := links[slug]
	if !ok {
		return model.ShareLink{}, apperror.NotFound("share link", slug)
	}

	if s.clock.Now().After(link.ExpiresAt) {
		delete(links, slug)
		if err := s.docs.SaveShareLinks(ctx, links); err != nil {
			return model.ShareLink{}, fmt.Errorf("service/share: purging expired link: %w", err)
		}
		return model.ShareLink{}, apperror.NotFound("share link", slug)
	}

	return link, nil
}
