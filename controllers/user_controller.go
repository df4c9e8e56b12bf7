// controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/middleware"
	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/services"
	"github.com/sirswa/crm_backend/utils"
)

// UserController contains user management logic
type UserController struct {
	users  *services.UserService
	photos *utils.PhotoStore
	logger *zap.Logger
}

// NewUserController creates a new user controller
func NewUserController(users *services.UserService, photos *utils.PhotoStore, logger *zap.Logger) *UserController {
	return &UserController{users: users, photos: photos, logger: logger}
}

// List handles GET /api/users
func (uc *UserController) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := uc.users.List(ctx)
	if err != nil {
		return respondError(c, uc.logger, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Create handles POST /api/users
func (uc *UserController) Create(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, uc.logger, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.Create(ctx, req)
	if err != nil {
		return respondError(c, uc.logger, err)
	}
	return c.JSON(http.StatusCreated, models.CreateUserResponse{
		Message: "User created successfully",
		User:    models.PrincipalFromUser(user),
	})
}

// Update handles PUT /api/users/:id
func (uc *UserController) Update(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, uc.logger, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.Update(ctx, c.Param("id"), req)
	if err != nil {
		return respondError(c, uc.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users/:id
func (uc *UserController) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.users.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, uc.logger, err)
	}
	return message(c, http.StatusOK, "User deleted successfully")
}

// Contacts handles GET /api/messages/users
func (uc *UserController) Contacts(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := uc.users.Contacts(ctx, middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, uc.logger, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UploadProfilePhoto handles POST /api/upload-profile
func (uc *UserController) UploadProfilePhoto(c echo.Context) error {
	p := middleware.GetPrincipal(c)
	if p.BreakGlass {
		return message(c, http.StatusForbidden, "Break-glass account has no profile")
	}

	fh, err := c.FormFile("profilePhoto")
	if err != nil {
		return message(c, http.StatusBadRequest, "No file uploaded")
	}
	if fh.Size > utils.MaxPhotoSize {
		return message(c, http.StatusBadRequest, "File too large. Maximum size is 5MB")
	}
	if err := utils.ValidateImageType(fh.Filename); err != nil {
		return respondError(c, uc.logger, err)
	}

	src, err := fh.Open()
	if err != nil {
		return respondError(c, uc.logger, err)
	}
	defer src.Close()

	photoURL, err := uc.photos.SaveProfilePhoto(p.ID.Hex(), fh.Filename, src)
	if err != nil {
		return respondError(c, uc.logger, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.users.SetProfilePhoto(ctx, p, photoURL); err != nil {
		if rmErr := uc.photos.Remove(photoURL); rmErr != nil {
			uc.logger.Warn("removing orphaned photo failed", zap.String("url", photoURL), zap.Error(rmErr))
		}
		return respondError(c, uc.logger, err)
	}
	return c.JSON(http.StatusOK, models.PhotoResponse{PhotoURL: photoURL})
}
