package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/farmfresh-backend/internal/users"
	pkgAuth "github.com/angelmondragon/farmfresh-backend/pkg/auth"
	"github.com/angelmondragon/farmfresh-backend/pkg/auth/session"
	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID, cartProfile string) error
	Me(ctx context.Context, userID string) (*users.UserDTO, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*users.UserDTO, error)
	CurrentUser(ctx context.Context, cartProfile string) (*CurrentUser, error)
}

type service struct {
	users   userRepository
	session sessionManager
	store   kv.Store
	hasher  *security.Hasher
	jwtCfg  config.JWTConfig
	logg    *logger.Logger
	now     func() time.Time
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, id string) (*users.User, error)
	UpdateProfile(ctx context.Context, id string, update users.ProfileUpdate) (*users.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time, rehashed string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID, userID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Store          kv.Store
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repository is required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		users:   params.UserRepo,
		session: params.SessionManager,
		store:   params.Store,
		hasher:  security.NewHasher(params.PasswordConfig),
		jwtCfg:  params.JWTConfig,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, rehashed, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Role) != "" {
		role, err := enums.ParseUserRole(req.Role)
		if err != nil || role != user.Role {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
	}

	now := s.now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now, rehashed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &now

	return s.startSession(ctx, user, req.CartProfile, now)
}

func (s *service) Logout(ctx context.Context, accessID, cartProfile string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	if strings.TrimSpace(cartProfile) == "" {
		return nil
	}
	if err := s.store.Delete(ctx, kv.CurrentUserKey(cartProfile)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear current user")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID string) (*users.UserDTO, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*users.UserDTO, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		req.Name = &trimmed
	}
	user, err := s.users.UpdateProfile(ctx, userID, req.toUpdate())
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return users.FromModel(user), nil
}

// CurrentUser returns the last user that authenticated on the cart profile, or nil.
func (s *service) CurrentUser(ctx context.Context, cartProfile string) (*CurrentUser, error) {
	if strings.TrimSpace(cartProfile) == "" {
		return nil, nil
	}
	var current CurrentUser
	err := kv.GetJSON(ctx, s.store, kv.CurrentUserKey(cartProfile), &current)
	switch {
	case err == nil:
		return &current, nil
	case errors.Is(err, kv.ErrNotFound), errors.Is(err, kv.ErrMalformed):
		return nil, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current user")
	}
}

// authenticate checks the credentials. When the stored hash predates the
// current Argon2 settings a fresh hash is returned for the caller to persist.
func (s *service) authenticate(ctx context.Context, email, password string) (*users.User, string, error) {
	denied := pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, "", denied
	}
	user, err := s.users.FindByEmail(ctx, input)
	if errors.Is(err, kv.ErrMalformed) {
		s.warnMalformedUsers(ctx, err)
		return nil, "", denied
	}
	if errors.Is(err, users.ErrNotFound) {
		return nil, "", denied
	}
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, "", denied
	}
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return user, "", nil
	}
	rehashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rehash password")
	}
	user.PasswordHash = rehashed
	return user, rehashed, nil
}

func (s *service) lookup(ctx context.Context, userID string) (*users.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, kv.ErrMalformed) {
			s.warnMalformedUsers(ctx, err)
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if errors.Is(err, users.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return user, nil
}

// warnMalformedUsers reports an undecodable users list. Lookups degrade to "not found"
// while Register keeps refusing so the stored accounts are never overwritten.
func (s *service) warnMalformedUsers(ctx context.Context, err error) {
	warnCtx := s.logg.WithFields(ctx, map[string]any{"key": kv.UsersKey(), "error": err.Error()})
	s.logg.Warn(warnCtx, "stored users list is malformed, treating lookup as not found")
}

func (s *service) startSession(ctx context.Context, user *users.User, cartProfile string, now time.Time) (*LoginResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	if strings.TrimSpace(cartProfile) != "" {
		current := CurrentUser{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
		if err := kv.SetJSON(ctx, s.store, kv.CurrentUserKey(cartProfile), current, 0); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store current user")
		}
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}
