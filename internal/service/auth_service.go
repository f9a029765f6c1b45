package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/murdoch-its/complaints-api/internal/mailer"
	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/otp"
	"github.com/murdoch-its/complaints-api/pkg/config"
	appErrors "github.com/murdoch-its/complaints-api/pkg/errors"
)

// AuthService implements the passwordless login flow: a registered account
// requests a one-time code by email and exchanges it for a bearer token.
type AuthService struct {
	accounts  accountRepository
	codes     otp.Store
	notifier  mailer.Notifier
	validator *validator.Validate
	logger    *zap.Logger
	jwtCfg    config.JWTConfig

	now      func() time.Time
	generate func() (string, error)
}

// NewAuthService creates an instance of AuthService.
func NewAuthService(accounts accountRepository, codes otp.Store, notifier mailer.Notifier, jwtCfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		accounts:  accounts,
		codes:     codes,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		jwtCfg:    jwtCfg,
		now:       time.Now,
		generate:  generateCode,
	}
}

// RequestCode issues a fresh one-time code for a registered account and mails
// it. Unknown emails are rejected before any code is generated, so no mail
// ever leaves for an address that has no account.
func (s *AuthService) RequestCode(ctx context.Context, req models.LoginRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	email := req.Email
	if _, err := s.accounts.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthenticated, "no account registered for this email")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up account")
	}

	code, err := s.generate()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate login code")
	}

	if err := s.codes.Put(ctx, email, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store login code")
	}

	if err := s.notifier.SendLoginCode(ctx, mailer.LoginCode{Email: email, Code: code}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to dispatch login code")
	}

	s.logger.Info("login code issued", zap.String("email", email))
	return nil
}

// ConfirmCode verifies a submitted code against the stored one and, on an
// exact match, consumes it and issues a signed bearer token. A code never
// survives a successful confirmation.
func (s *AuthService) ConfirmCode(ctx context.Context, req models.ConfirmRequest) (*models.ConfirmResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirm payload")
	}

	email := req.Email
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "no account registered for this email")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up account")
	}

	ok, err := s.codes.Consume(ctx, email, req.OTP)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify login code")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "invalid or expired login code")
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	s.logger.Info("login confirmed", zap.String("email", email), zap.String("role", string(account.Role)))
	return &models.ConfirmResponse{
		Flag:      true,
		Role:      account.Role,
		Token:     token,
		ExpiresIn: int64(s.jwtCfg.Expiration.Seconds()),
	}, nil
}

// ValidateToken parses and verifies a bearer token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(account *models.Account) (string, error) {
	now := s.now().UTC()
	claims := models.JWTClaims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// generateCode draws a uniform four digit code, zero padded, so every value
// from 0000 through 9999 is equally likely.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
