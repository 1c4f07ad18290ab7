package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go-food-ordering/database"
	"go-food-ordering/helpers"
	"go-food-ordering/middleware"
	"go-food-ordering/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
}

type UserController struct {
	users  UserRepository
	logger *slog.Logger
}

func NewUserController(users UserRepository, logger *slog.Logger) *UserController {
	return &UserController{users: users, logger: logger}
}

// CreateCurrentUser registers the authenticated subject on first login. A
// user that already exists is returned unchanged.
func (uc *UserController) CreateCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var req models.CreateUserRequest
		if !helpers.BindAndValidate(c, &req) {
			return
		}
		auth0ID := c.GetString(middleware.Auth0IDKey)

		existing, err := uc.users.FindByAuth0ID(ctx, auth0ID)
		if err == nil {
			c.JSON(http.StatusOK, existing)
			return
		}
		if !errors.Is(err, database.ErrNotFound) {
			helpers.RespondError(c, uc.logger, err)
			return
		}

		user := &models.User{
			ID:      primitive.NewObjectID(),
			Auth0ID: auth0ID,
			Email:   req.Email,
		}
		err = uc.users.Create(ctx, user)
		if errors.Is(err, database.ErrDuplicate) {
			// A concurrent first login won the insert.
			existing, err = uc.users.FindByAuth0ID(ctx, auth0ID)
			if err != nil {
				helpers.RespondError(c, uc.logger, err)
				return
			}
			c.JSON(http.StatusOK, existing)
			return
		}
		if err != nil {
			helpers.RespondError(c, uc.logger, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func (uc *UserController) GetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		user, err := uc.users.FindByAuth0ID(ctx, c.GetString(middleware.Auth0IDKey))
		if err != nil {
			helpers.RespondError(c, uc.logger, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func (uc *UserController) UpdateCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var req models.UpdateUserRequest
		if !helpers.BindAndValidate(c, &req) {
			return
		}

		user, err := uc.users.FindByAuth0ID(ctx, c.GetString(middleware.Auth0IDKey))
		if err != nil {
			helpers.RespondError(c, uc.logger, err)
			return
		}
		user.Name = req.Name
		user.AddressLine1 = req.AddressLine1
		user.City = req.City
		user.Country = req.Country

		if err := uc.users.UpdateProfile(ctx, user); err != nil {
			helpers.RespondError(c, uc.logger, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
