package service

import (
	"context"
	"errors"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vocabnote/internal/model"
	appErr "github.com/xxxsen/vocabnote/internal/pkg/errors"
	"github.com/xxxsen/vocabnote/internal/pkg/password"
	"github.com/xxxsen/vocabnote/internal/pkg/timeutil"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUserID(ctx context.Context, userID string) (*model.User, error)
}

type AuthService struct {
	users         UserStore
	allowRegister bool
}

func NewAuthService(users UserStore, allowRegister bool) *AuthService {
	return &AuthService{users: users, allowRegister: allowRegister}
}

// FindUser looks a user up by handle, ErrNotFound when there is none.
func (s *AuthService) FindUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByUserID(ctx, userID)
}

// CreateUser stores a new user row. ErrDuplicateHandle when the handle is
// taken; the existing row is left as is.
func (s *AuthService) CreateUser(ctx context.Context, userID, passwordHash string) (*model.User, error) {
	user := &model.User{
		ID:           newID(),
		UserID:       userID,
		PasswordHash: passwordHash,
		Ctime:        timeutil.NowUnix(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if appErr.IsConflict(err) {
			return nil, appErr.ErrDuplicateHandle
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) HashPassword(plain string) (string, error) {
	return password.Hash(plain)
}

func (s *AuthService) VerifyPassword(hash, plain string) bool {
	return password.Compare(hash, plain) == nil
}

func (s *AuthService) Register(ctx context.Context, userID, plainPassword string) (*model.User, error) {
	if !s.allowRegister {
		return nil, appErr.ErrRegistrationClosed
	}
	hash, err := s.HashPassword(plainPassword)
	if err != nil {
		return nil, err
	}
	user, err := s.CreateUser(ctx, userID, hash)
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("user registered", zap.String("user_id", userID))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, userID, plainPassword string) (*model.User, error) {
	user, err := s.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, appErr.ErrNotFound) {
			return nil, appErr.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(user.PasswordHash, plainPassword) {
		return nil, appErr.ErrInvalidCredentials
	}
	return user, nil
}
