package service

import (
	"fmt"
	"sync"
	"time"

	"digital-garden/internal/domain"
)

const identityCacheTTL = 30 * time.Second

type identityCacheEntry struct {
	identity  domain.Identity
	expiresAt time.Time
}

type authService struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger

	identityCacheMu sync.RWMutex
	identityCache   map[string]identityCacheEntry
}

func NewAuthService(
	supabaseClient domain.SupabaseClient,
	logger domain.Logger,
) *authService {
	return &authService{
		supabaseClient: supabaseClient,
		logger:         logger,
		identityCache:  make(map[string]identityCacheEntry),
	}
}

// ValidateToken resolves an access token into the identity it belongs to.
// Successful lookups are cached briefly so back-to-back requests for the
// same session do not hammer the auth endpoint.
func (s *authService) ValidateToken(token string) (*domain.Identity, error) {
	now := time.Now()
	s.identityCacheMu.RLock()
	entry, ok := s.identityCache[token]
	s.identityCacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		identity := entry.identity
		return &identity, nil
	}

	identity, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	s.identityCacheMu.Lock()
	s.identityCache[token] = identityCacheEntry{identity: *identity, expiresAt: now.Add(identityCacheTTL)}
	s.identityCacheMu.Unlock()

	return identity, nil
}
