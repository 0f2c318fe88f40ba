// Package services contains the application services sitting between the
// CLI and the document store: authentication, lender CRUD, loan/payment
// mutation helpers and dashboard aggregation. Every query issued here
// carries the owning user id as an equality filter; the store itself
// does not enforce that boundary.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/loankeeper/internal/common"
	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
	"github.com/dmitrijs2005/loankeeper/internal/session"
)

const minPasswordLen = 6

// AuthService implements registration, login and password recovery on
// top of the users collection, and drives the session manager.
type AuthService struct {
	store             docstore.Store
	sessions          *session.Manager
	resetCodeValidity time.Duration
	logger            logging.Logger
}

func NewAuthService(store docstore.Store, sessions *session.Manager, resetCodeValidity time.Duration, logger logging.Logger) *AuthService {
	return &AuthService{
		store:             store,
		sessions:          sessions,
		resetCodeValidity: resetCodeValidity,
		logger:            logger.With("component", "auth"),
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
	AvatarKey   string
}

// Register creates an account and signs it in. Emails are unique
// case-insensitively: they are normalized to lower case both at write
// time and in lookups. Phone numbers are unique when present.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, common.ErrEmailRequired
	}
	if len(in.Password) < minPasswordLen {
		return nil, common.ErrPasswordTooShort
	}

	if _, err := s.findUserByEmail(ctx, email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		taken, err := s.phoneTaken(ctx, phone, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, common.ErrPhoneTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:         email,
		Phone:         phone,
		PasswordHash:  string(hash),
		DisplayName:   strings.TrimSpace(in.DisplayName),
		AvatarKey:     in.AvatarKey,
		EmailVerified: true,
		CreatedAt:     time.Now().UTC(),
	}

	data, err := docstore.Encode(user)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, models.CollectionUsers, data)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.ID = id

	sess := sessionFor(user)
	if err := s.sessions.SignIn(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "userId", id)
	return sess, nil
}

// Login verifies the credential and signs the user in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.findUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	sess := sessionFor(user)
	if err := s.sessions.SignIn(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.SignOut(ctx)
}

// RequestPasswordReset issues a time-limited, single-use numeric code
// for the account and returns it to the caller for delivery. Only a
// hash of the code is stored.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.findUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUserNotFound
		}
		return "", err
	}

	code, err := common.MakeRandDigits(6)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	rc := &models.ResetCode{
		UserID:    user.ID,
		CodeHash:  hashResetCode(code),
		ExpiresAt: now.Add(s.resetCodeValidity),
		CreatedAt: now,
	}
	data, err := docstore.Encode(rc)
	if err != nil {
		return "", err
	}
	if _, err := s.store.Create(ctx, models.CollectionResetCodes, data); err != nil {
		return "", fmt.Errorf("create reset code: %w", err)
	}

	s.logger.Info(ctx, "reset code issued", "userId", user.ID)
	return code, nil
}

// ConfirmPasswordReset verifies a recovery code and replaces the
// credential. The code is marked used before the password write, so it
// cannot be replayed even if the second write fails.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return common.ErrPasswordTooShort
	}

	user, err := s.findUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}

	q := docstore.C(models.CollectionResetCodes).
		Where(docstore.Eq("userId", user.ID), docstore.Eq("used", false))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return err
	}
	codes, err := docstore.DecodeAll[models.ResetCode](docs)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var match *models.ResetCode
	for i := range codes {
		if codes[i].CodeHash == hashResetCode(code) && codes[i].ExpiresAt.After(now) {
			match = &codes[i]
			break
		}
	}
	if match == nil {
		return common.ErrInvalidResetCode
	}

	if err := s.store.Update(ctx, models.CollectionResetCodes, match.ID, map[string]any{"used": true}); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.Update(ctx, models.CollectionUsers, user.ID, map[string]any{"passwordHash": string(hash)}); err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "userId", user.ID)
	return nil
}

type ProfileInput struct {
	DisplayName string
	Phone       string
	AvatarKey   string
}

// UpdateProfile edits the signed-in user's profile and refreshes the
// persisted session so consumers observe the new identity attributes.
func (s *AuthService) UpdateProfile(ctx context.Context, in ProfileInput) (*models.Session, error) {
	current := s.sessions.CurrentUser()
	if current == nil {
		return nil, common.ErrNotSignedIn
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		taken, err := s.phoneTaken(ctx, phone, current.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, common.ErrPhoneTaken
		}
	}

	patch := map[string]any{
		"displayName": strings.TrimSpace(in.DisplayName),
		"phone":       phone,
	}
	if in.AvatarKey != "" {
		patch["avatarKey"] = in.AvatarKey
	}
	if err := s.store.Update(ctx, models.CollectionUsers, current.UserID, patch); err != nil {
		return nil, err
	}

	sess := &models.Session{
		UserID:        current.UserID,
		Email:         current.Email,
		DisplayName:   strings.TrimSpace(in.DisplayName),
		AvatarKey:     current.AvatarKey,
		EmailVerified: current.EmailVerified,
	}
	if in.AvatarKey != "" {
		sess.AvatarKey = in.AvatarKey
	}
	if err := s.sessions.SignIn(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ChangePassword replaces the signed-in user's credential after
// verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	sess := s.sessions.CurrentUser()
	if sess == nil {
		return common.ErrNotSignedIn
	}
	if len(newPassword) < minPasswordLen {
		return common.ErrPasswordTooShort
	}

	user, err := s.findUserByEmail(ctx, sess.Email)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return common.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.Update(ctx, models.CollectionUsers, user.ID, map[string]any{"passwordHash": string(hash)})
}

func (s *AuthService) findUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := docstore.C(models.CollectionUsers).Where(docstore.Eq("email", email))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}

	user := &models.User{}
	if err := docs[0].Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) phoneTaken(ctx context.Context, phone, exceptUserID string) (bool, error) {
	q := docstore.C(models.CollectionUsers).Where(docstore.Eq("phone", phone))
	docs, err := docstore.GetOnce(ctx, s.store, q)
	if err != nil {
		return false, err
	}
	for _, d := range docs {
		if d.ID != exceptUserID {
			return true, nil
		}
	}
	return false, nil
}

func sessionFor(u *models.User) *models.Session {
	return &models.Session{
		UserID:        u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		AvatarKey:     u.AvatarKey,
		EmailVerified: u.EmailVerified,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
