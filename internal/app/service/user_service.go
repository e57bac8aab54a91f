package service

import (
	"errors"
	"strings"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/ikkim/bookshelf-backend/pkg/util"
	"gorm.io/gorm"
)

// UserInput is the admin payload for creating or replacing a user.
type UserInput struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   uint   `json:"role_id"`
}

type UserService interface {
	List() ([]model.User, error)
	Get(id uint) (*model.User, error)
	Create(input UserInput) (*model.User, error)
	Replace(id uint, input UserInput) error
	Delete(id uint) error
	Roles() ([]model.Role, error)
	EnsureAdmin(login, email, password string) (*model.User, error)
}

type userService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	orderRepo  repository.OrderRepository
	reviewRepo repository.ReviewRepository
}

func NewUserService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	reviewRepo repository.ReviewRepository,
) UserService {
	return &userService{
		db:         db,
		userRepo:   userRepo,
		orderRepo:  orderRepo,
		reviewRepo: reviewRepo,
	}
}

func (s *userService) List() ([]model.User, error) {
	return s.userRepo.FindAll()
}

func (s *userService) Get(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Roles() ([]model.Role, error) {
	return s.userRepo.FindRoles()
}

func (s *userService) normalize(users repository.UserRepository, input *UserInput) error {
	input.Login = strings.TrimSpace(input.Login)
	input.Email = strings.TrimSpace(input.Email)
	if input.Login == "" || input.Email == "" {
		return ErrMissingField
	}
	if input.RoleID == 0 {
		input.RoleID = model.RoleIDUser
	}
	ok, err := users.RoleExists(input.RoleID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoleNotFound
	}
	return nil
}

func (s *userService) Create(input UserInput) (*model.User, error) {
	if err := s.normalize(s.userRepo, &input); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, ErrMissingField
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Login:        input.Login,
		Email:        input.Email,
		PasswordHash: hash,
		RoleID:       input.RoleID,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("User created by admin", logger.Fields{
		"user_id": user.ID,
		"role_id": user.RoleID,
	})
	return user, nil
}

// Replace keeps the stored password hash when no new password is given.
func (s *userService) Replace(id uint, input UserInput) error {
	resolved, err := resolveID(id, input.ID)
	if err != nil {
		return err
	}
	if err := s.normalize(s.userRepo, &input); err != nil {
		return err
	}

	user := &model.User{
		ID:     resolved,
		Login:  input.Login,
		Email:  input.Email,
		RoleID: input.RoleID,
	}
	withPassword := input.Password != ""
	if withPassword {
		if user.PasswordHash, err = util.HashPassword(input.Password); err != nil {
			return err
		}
	}

	rows, err := s.userRepo.Update(user, withPassword)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete is rejected while the user owns orders or reviews.
func (s *userService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		orders, err := s.orderRepo.WithTx(tx).CountByUser(id)
		if err != nil {
			return err
		}
		reviews, err := s.reviewRepo.WithTx(tx).CountByUser(id)
		if err != nil {
			return err
		}
		if orders > 0 || reviews > 0 {
			if _, err := s.userRepo.WithTx(tx).FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			logger.Warn("User delete restricted", logger.Fields{
				"user_id": id,
				"orders":  orders,
				"reviews": reviews,
			})
			return ErrUserInUse
		}

		rows, err := s.userRepo.WithTx(tx).Delete(id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// EnsureAdmin creates an admin account or promotes and re-keys an existing login.
func (s *userService) EnsureAdmin(login, email, password string) (*model.User, error) {
	existing, err := s.userRepo.FindByLogin(login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.Create(UserInput{Login: login, Email: email, Password: password, RoleID: model.RoleIDAdmin})
	}
	if err != nil {
		return nil, err
	}

	if email == "" {
		email = existing.Email
	}
	if err := s.Replace(existing.ID, UserInput{
		Login:    existing.Login,
		Email:    email,
		Password: password,
		RoleID:   model.RoleIDAdmin,
	}); err != nil {
		return nil, err
	}
	return s.Get(existing.ID)
}
