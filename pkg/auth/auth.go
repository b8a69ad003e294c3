// Package auth provides cookie-session authentication backed by the
// sessions table: phone + 4-digit PIN login, opaque session IDs, and
// an expiry sweep.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/kumunzee/villagebank/pkg/models"
	"github.com/kumunzee/villagebank/pkg/store"
)

// DefaultSessionTTL matches the original seven-day cookie lifetime.
const DefaultSessionTTL = 7 * 24 * time.Hour

type Service struct {
	storage store.Storage
	ttl     time.Duration
	logger  *logrus.Logger
}

func NewService(s store.Storage, ttl time.Duration, logger *logrus.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{storage: s, ttl: ttl, logger: logger}
}

func generateSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Login verifies a member's phone and PIN and opens a session.
// Credential failures are indistinguishable from unknown phones.
func (s *Service) Login(phone, pin string) (*models.Member, string, error) {
	member, err := s.storage.GetMemberByPhone(phone)
	if err != nil {
		s.logger.WithField("phone", phone).Warn("Login attempt for unknown phone")
		return nil, "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PINHash), []byte(pin)); err != nil {
		s.logger.WithField("member_id", member.ID).Warn("Login attempt with wrong PIN")
		return nil, "", models.ErrInvalidCredentials
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, "", err
	}
	session := &models.Session{
		ID:        id,
		MemberID:  member.ID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.storage.CreateSession(session); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.WithField("member_id", member.ID).Info("Member logged in")
	return member, id, nil
}

// Authenticate resolves a session ID to its member, rejecting expired
// or unknown sessions.
func (s *Service) Authenticate(sessionID string) (*models.Member, error) {
	if sessionID == "" {
		return nil, models.ErrInvalidSession
	}

	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return nil, models.ErrInvalidSession
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, models.ErrInvalidSession
	}

	member, err := s.storage.GetMember(session.MemberID)
	if err != nil {
		return nil, models.ErrInvalidSession
	}
	return member, nil
}

// Logout deletes a session. Unknown IDs are not an error.
func (s *Service) Logout(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.storage.DeleteSession(sessionID)
}

// Sweep removes expired sessions; run periodically.
func (s *Service) Sweep() {
	if err := s.storage.DeleteExpiredSessions(); err != nil {
		s.logger.WithError(err).Error("Failed to sweep expired sessions")
		return
	}
	s.logger.Debug("Expired sessions swept")
}
