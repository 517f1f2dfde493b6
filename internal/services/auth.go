package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/ctxutil"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
	"github.com/tasbeha/deaconschool-backend/internal/utils"
)

type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)

	// SetContextFromToken validates the bearer token and attaches the
	// caller's identity to the request context.
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
}

type authService struct {
	userRepo  repos.UserRepo
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logger.Logger
}

func NewAuthService(userRepo repos.UserRepo, baseLog *logger.Logger) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	secret := utils.GetEnv("JWT_SECRET", "", serviceLog)
	if secret == "" {
		serviceLog.Warn("JWT_SECRET not set, generating an ephemeral secret; sessions will not survive restarts")
		secret = uuid.NewString()
	}
	ttlMinutes := utils.GetEnvAsInt("JWT_TTL_MINUTES", 60*24, serviceLog)
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(secret),
		tokenTTL:  time.Duration(ttlMinutes) * time.Minute,
		log:       serviceLog,
	}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	const op = "AuthService.Signup"
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewError(domain.CodeValidation, op, "a valid email is required", nil)
	}
	if len(in.Password) < 8 {
		return nil, domain.NewError(domain.CodeValidation, op, "password must be at least 8 characters", nil)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleDeacon
	}
	if !domain.ValidRole(role) {
		return nil, domain.NewError(domain.CodeValidation, op, "unknown role", nil)
	}

	exists, err := s.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if exists {
		return nil, domain.NewError(domain.CodeConflict, op, "email already registered", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.userRepo.Create(ctx, nil, []*domain.User{user}); err != nil {
		return nil, txn.MapError(op, err)
	}
	s.log.Info("user signed up", "user_id", user.ID, "role", user.Role)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	const op = "AuthService.Login"
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, txn.MapError(op, err)
	}
	if user == nil {
		return nil, domain.NewError(domain.CodeValidation, op, "invalid email or password", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, domain.NewError(domain.CodeValidation, op, "invalid email or password", nil)
	}
	return s.issue(user)
}

func (s *authService) issue(user *domain.User) (*AuthResult, error) {
	const op = "AuthService.issue"
	expires := time.Now().UTC().Add(s.tokenTTL)
	claims := accessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}
	return &AuthResult{User: user, AccessToken: signed, ExpiresAt: expires}, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	const op = "AuthService.SetContextFromToken"
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, domain.NewError(domain.CodeValidation, op, "missing bearer token", nil)
	}
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.NewError(domain.CodeValidation, op, "unexpected signing method", nil)
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.NewError(domain.CodeValidation, op, "invalid or expired token", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.NewError(domain.CodeValidation, op, "invalid token subject", err)
	}
	rd := &ctxutil.RequestData{
		TokenString: token,
		UserID:      userID,
		Role:        claims.Role,
	}
	return ctxutil.WithRequestData(ctxutil.Default(ctx), rd), nil
}
