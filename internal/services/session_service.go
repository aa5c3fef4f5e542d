package services

import (
	"errors"
	"time"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionService issues bearer tokens backed by server-side session rows.
// A session expires after two hours of inactivity and is refreshed on every
// authenticated request.
type SessionService interface {
	Login(email, password string) (string, *models.Session, error)
	Resolve(token string) (*models.Session, error)
	Logout(token string) error
}

type sessionService struct {
	db     *gorm.DB
	users  UserService
	secret []byte
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSessionService creates a new SessionService
func NewSessionService(db *gorm.DB, users UserService, jwtSecret string) SessionService {
	return &sessionService{db: db, users: users, secret: []byte(jwtSecret)}
}

func (s *sessionService) Login(email, password string) (string, *models.Session, error) {
	user, err := s.users.Authenticate(email, password)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	session := &models.Session{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := s.db.Create(session).Error; err != nil {
		return "", nil, apperrors.Internal(err)
	}
	session.User = *user

	claims := sessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  session.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, apperrors.Internal(err)
	}

	return token, session, nil
}

// Resolve validates the token, loads the session, enforces the inactivity
// window, and refreshes the last-activity timestamp.
func (s *sessionService) Resolve(token string) (*models.Session, error) {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := s.db.Preload("User").Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("Session not found")
		}
		return nil, apperrors.Internal(err)
	}

	if session.Revoked {
		return nil, apperrors.Unauthorized("Session has been revoked")
	}

	now := time.Now()
	if session.Expired(now) {
		return nil, apperrors.Unauthorized("Session expired due to inactivity")
	}

	session.LastActivityAt = now
	if err := s.db.Model(&session).Update("last_activity_at", now).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	return &session, nil
}

func (s *sessionService) Logout(token string) error {
	sessionID, err := s.parseToken(token)
	if err != nil {
		return err
	}
	if err := s.db.Model(&models.Session{}).Where("id = ?", sessionID).Update("revoked", true).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *sessionService) parseToken(token string) (string, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return "", apperrors.Unauthorized("Invalid token")
	}
	return claims.SessionID, nil
}
