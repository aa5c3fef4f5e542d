package services

import (
	"errors"

	"github.com/colmena-labs/stellardonate/internal/apperrors"
	"github.com/colmena-labs/stellardonate/internal/models"
	"github.com/colmena-labs/stellardonate/internal/stellar"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles user registration and profile management
type UserService interface {
	Register(req RegisterRequest) (*models.UserProfile, error)
	Authenticate(email, password string) (*models.UserProfile, error)
	GetUser(id uint) (*models.UserProfile, error)
	UpdateProfile(id uint, req UpdateProfileRequest) (*models.UserProfile, error)
}

type userService struct {
	db        *gorm.DB
	validator *validator.Validate
}

type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Name     string          `json:"name"`
	Role     models.UserRole `json:"role"`
}

type UpdateProfileRequest struct {
	Name          *string          `json:"name,omitempty"`
	Role          *models.UserRole `json:"role,omitempty"`
	WalletAddress *string          `json:"wallet_address,omitempty"`
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db, validator: validator.New()}
}

func (s *userService) Register(req RegisterRequest) (*models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		fields := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Email":
					fields["email"] = "A valid email is required"
				case "Password":
					fields["password"] = "Password must be at least 8 characters"
				}
			}
		}
		return nil, apperrors.ValidationFields(fields)
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		return nil, apperrors.ValidationFields(map[string]string{
			"role": "Role must be one of person, startup, project, pyme",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.UserProfile{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ValidationFields(map[string]string{
				"email": "Email is already registered",
			})
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *userService) Authenticate(email, password string) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	return &user, nil
}

func (s *userService) GetUser(id uint) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &user, nil
}

func (s *userService) UpdateProfile(id uint, req UpdateProfileRequest) (*models.UserProfile, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		fields["role"] = "Role must be one of person, startup, project, pyme"
	}
	if req.WalletAddress != nil && *req.WalletAddress != "" && !stellar.IsValidAccountAddress(*req.WalletAddress) {
		fields["wallet_address"] = "Invalid Stellar wallet address"
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields(fields)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.WalletAddress != nil {
		if *req.WalletAddress == "" {
			user.WalletAddress = nil
		} else {
			user.WalletAddress = req.WalletAddress
		}
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
