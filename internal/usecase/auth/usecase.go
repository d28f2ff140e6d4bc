// Package auth implements phone-based registration with OTP verification and
// token sessions.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"arthalend-backend/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrOTPExpired         = errors.New("verification code expired")
	ErrNotVerified        = errors.New("phone number not verified")
	ErrSessionExpired     = errors.New("session expired or revoked")
)

// OTPStore keeps one pending verification code per phone.
type OTPStore interface {
	Save(ctx context.Context, phone, code string) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

type RegisterInput struct {
	Phone       string `json:"phone" validate:"required,min=7,max=20"`
	FirstName   string `json:"first_name" validate:"required"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name" validate:"required"`
	DateOfBirth string `json:"dob,omitempty"`
	Password    string `json:"password" validate:"required,min=8"`
}

type SessionToken struct {
	Token     string    `json:"token"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

type claims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

type Usecase struct {
	users      user.Repository
	sessions   user.SessionRepository
	otp        OTPStore
	jwtSecret  []byte
	sessionTTL time.Duration
	log        *zap.Logger

	now func() time.Time
}

func NewUsecase(
	users user.Repository,
	sessions user.SessionRepository,
	otp OTPStore,
	jwtSecret string,
	sessionTTL time.Duration,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		users:      users,
		sessions:   sessions,
		otp:        otp,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Register creates (or refreshes) an unverified account and issues a
// verification code. Re-registering an unverified phone restarts the flow;
// a verified account cannot be re-registered.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) error {
	existing, err := u.users.GetByPhone(ctx, in.Phone)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return err
	}
	if existing != nil && existing.IsVerified {
		return user.ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := &user.User{
		Phone:        in.Phone,
		FirstName:    in.FirstName,
		MiddleName:   in.MiddleName,
		LastName:     in.LastName,
		DateOfBirth:  in.DateOfBirth,
		PasswordHash: string(hash),
	}
	if existing != nil {
		account.ID = existing.ID
		err = u.users.Save(ctx, account)
	} else {
		err = u.users.Create(ctx, account)
	}
	if err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := u.otp.Save(ctx, in.Phone, code); err != nil {
		return err
	}

	// stands in for the SMS gateway
	u.log.Info("verification code issued", zap.String("phone", in.Phone), zap.String("code", code))
	return nil
}

// VerifyOTP consumes the pending code and marks the account verified.
func (u *Usecase) VerifyOTP(ctx context.Context, phone, code string) error {
	stored, err := u.otp.Get(ctx, phone)
	if err != nil {
		return ErrOTPExpired
	}
	if stored != code {
		return ErrInvalidOTP
	}

	account, err := u.users.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	account.IsVerified = true
	if err := u.users.Save(ctx, account); err != nil {
		return err
	}
	return u.otp.Delete(ctx, phone)
}

// Login checks the credentials and opens a session backed by a signed token.
func (u *Usecase) Login(ctx context.Context, phone, password string) (*SessionToken, error) {
	account, err := u.users.GetByPhone(ctx, phone)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}
	if !account.IsVerified {
		return nil, ErrNotVerified
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := u.now()
	expiresAt := now.Add(u.sessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Phone: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(u.jwtSecret)
	if err != nil {
		return nil, err
	}

	if err := u.sessions.Create(ctx, &user.Session{
		Token:     signed,
		Phone:     phone,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}

	return &SessionToken{Token: signed, Phone: phone, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session. Revoking an unknown token is not an error.
func (u *Usecase) Logout(ctx context.Context, token string) error {
	return u.sessions.DeleteByToken(ctx, token)
}

// Authenticate validates the signed token and its server-side session,
// returning the caller's phone. Both must hold: a valid signature with a
// revoked session is still rejected.
func (u *Usecase) Authenticate(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return u.jwtSecret, nil
	}, jwt.WithTimeFunc(u.now))
	if err != nil || !parsed.Valid {
		return "", ErrSessionExpired
	}
	c, ok := parsed.Claims.(*claims)
	if !ok {
		return "", ErrSessionExpired
	}

	session, err := u.sessions.GetByToken(ctx, token)
	if errors.Is(err, user.ErrNotFound) {
		return "", ErrSessionExpired
	} else if err != nil {
		return "", err
	}
	if u.now().After(session.ExpiresAt) {
		return "", ErrSessionExpired
	}
	return c.Phone, nil
}
