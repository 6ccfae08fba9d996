package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/rentals/internal/validate"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

type registerResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *handler) register(c *gin.Context) {
	var req types.Registration
	if !bindJSON(c, &req) {
		return
	}
	if err := validate.Signup(req.FullName, req.Email, req.Password, req.Password); err != nil {
		h.fail(c, "register", err)
		return
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		h.fail(c, "register", err)
		return
	}
	u, err := h.backend.CreateUser(req.FullName, req.Email, hash)
	if err != nil {
		h.fail(c, "register", err)
		return
	}
	h.logger.Info("user registered", "id", u.ID)
	c.JSON(http.StatusCreated, registerResponse{ID: u.ID, FullName: u.FullName, Email: u.Email})
}

func (h *handler) login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validate.Login(req.Email, req.Password); err != nil {
		h.fail(c, "login", err)
		return
	}
	u, err := h.backend.UserByEmail(req.Email)
	if errors.Is(err, types.ErrNotFound) {
		abortWith(c, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	ok, err := VerifyPassword(u.PasswordHash, req.Password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	if !ok {
		abortWith(c, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	token, expires, err := h.backend.IssueToken(u.ID, 0)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}
