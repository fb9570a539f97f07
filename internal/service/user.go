package service

import (
	"context"
	"errors"
	"strings"

	"github.com/pageza/foodgram/backend/internal/database"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
	"gorm.io/gorm"
)

const (
	msgReservedUsername = `Cannot use "me" as login.`
	msgUsernameTaken    = "User already exists."
	msgEmailTaken       = "E-mail is already registered."
)

// UserService handles accounts and profiles.
type UserService struct {
	db       *gorm.DB
	images   ImageStore
	proj     *projector
	validate *validation.Validator
}

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{
		db:       db,
		images:   images,
		proj:     &projector{db: db, images: images},
		validate: validation.New(),
	}
}

func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.RegisteredUser, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if strings.EqualFold(username, "me") {
		return nil, domainerrors.FieldError("username", msgReservedUsername)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, domainerrors.Internal("failed to check username", err)
	}
	if count > 0 {
		return nil, domainerrors.FieldError("username", msgUsernameTaken)
	}
	if err := db.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error; err != nil {
		return nil, domainerrors.Internal("failed to check email", err)
	}
	if count > 0 {
		return nil, domainerrors.FieldError("email", msgEmailTaken)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domainerrors.Conflict(msgUsernameTaken)
		}
		return nil, domainerrors.Internal("failed to create user", err)
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return &types.RegisteredUser{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *UserService) findUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("User not found.")
		}
		return nil, domainerrors.Internal("failed to load user", err)
	}
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, viewerID, userID uint) (*types.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.proj.users(ctx, viewerID, []models.User{*user})
	if err != nil {
		return nil, domainerrors.Internal("failed to project user", err)
	}
	return &out[0], nil
}

// ListUsers returns users newest first.
func (s *UserService) ListUsers(ctx context.Context, viewerID uint, page types.PageRequest) ([]types.UserResponse, int64, error) {
	page = page.Normalize()
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, domainerrors.Internal("failed to count users", err)
	}

	var users []models.User
	if err := db.Order("id DESC").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
		return nil, 0, domainerrors.Internal("failed to list users", err)
	}

	out, err := s.proj.users(ctx, viewerID, users)
	if err != nil {
		return nil, 0, domainerrors.Internal("failed to project users", err)
	}
	return out, total, nil
}

func (s *UserService) SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		return domainerrors.FieldError("current_password", "Invalid password.")
	}
	if req.NewPassword == req.CurrentPassword {
		return domainerrors.FieldError("new_password", "The new password must differ from the current one.")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return domainerrors.Internal("failed to update password", err)
	}
	return nil
}

// DeleteAccount removes the user, their recipes and every relation row that
// references either.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint, currentPassword string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, currentPassword) {
		return domainerrors.FieldError("current_password", "Invalid password.")
	}

	var images []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipeIDs []uint
		if err := tx.Model(&models.Recipe{}).Where("author_id = ?", userID).Pluck("id", &recipeIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Recipe{}).Where("author_id = ?", userID).Pluck("image", &images).Error; err != nil {
			return err
		}
		if err := deleteRecipeRows(tx, recipeIDs); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR author_id = ?", userID, userID).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return domainerrors.Internal("failed to delete account", err)
	}

	for _, key := range images {
		removeImage(ctx, s.images, key)
	}
	logging.Ctx(ctx).Info().Uint("user_id", userID).Int("recipes", len(images)).Msg("account deleted")
	return nil
}
