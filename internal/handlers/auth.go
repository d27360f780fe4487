package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/urbanstyle/tienda/internal/hash"
	"github.com/urbanstyle/tienda/internal/models"
	"github.com/urbanstyle/tienda/internal/mykafka"
	"github.com/urbanstyle/tienda/internal/service/token"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
}

type registerRequest struct {
	Name           string `json:"name"`
	LastName       string `json:"lastname"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone"`
}

func (r *registerRequest) complete() bool {
	return r.Name != "" && r.LastName != "" && r.Email != "" && r.Password != "" &&
		r.DocumentType != "" && r.DocumentNumber != "" && r.Phone != ""
}

func (h *AuthHandler) publish(c echo.Context, topic string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Todos los campos son obligatorios")
	}
	if !req.complete() {
		return echo.NewHTTPError(http.StatusBadRequest, "Todos los campos son obligatorios")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var existing models.User
	result := h.DB.Where("email = ?", req.Email).First(&existing)
	if result.Error == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Error al registrar usuario o usuario ya existe")
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}

	user := models.User{
		Email:          req.Email,
		PasswordHash:   pwHash,
		Name:           req.Name,
		LastName:       req.LastName,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Phone:          req.Phone,
		Role:           models.RoleCustomer,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// unique index on email catches the race the pre-check misses
		return echo.NewHTTPError(http.StatusBadRequest, "Error al registrar usuario o usuario ya existe")
	}

	h.publish(c, "user_events", map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Todos los campos son obligatorios")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Todos los campos son obligatorios")
	}

	// unknown email and wrong password share one answer, no user enumeration
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Correo o contraseña incorrectos")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Correo o contraseña incorrectos")
	}

	tok, err := token.Sign(user.ID, user.Email, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, "user_events", map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   tok,
		"isAdmin": user.IsAdmin(),
	})
}
