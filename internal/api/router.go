package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/rentals/internal/sqlite"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// Backend is the storage the server runs on. *sqlite.Backend implements it.
type Backend interface {
	ListApartments() ([]types.Apartment, error)
	GetApartment(id types.ID) (types.Apartment, error)
	CreateApartment(f types.ApartmentFields) (types.Apartment, error)
	UpdateApartment(id types.ID, f types.ApartmentFields) (types.Apartment, error)
	SetApartmentStatus(id types.ID, status string) (types.Apartment, error)
	DeactivateApartment(id types.ID) error
	DeleteApartment(id types.ID) error

	ListContracts() ([]types.Contract, error)
	GetContract(id types.ID) (types.Contract, error)
	CreateContract(p types.ContractPayload) (types.Contract, error)
	UpdateContract(id types.ID, p types.ContractPayload) (types.Contract, error)
	DeactivateContract(id types.ID) error
	DeleteContract(id types.ID) error
	ExpireContracts(today types.Date) (int64, error)

	CreateUser(fullName, email, passwordHash string) (sqlite.User, error)
	UserByEmail(email string) (sqlite.User, error)
	IssueToken(userID string, ttl time.Duration) (string, time.Time, error)
	TokenUser(token string) (string, error)
	PurgeExpiredTokens() (int64, error)
}

var _ Backend = (*sqlite.Backend)(nil)

// userIDKey is the gin context key holding the authenticated user id.
const userIDKey = "user_id"

type handler struct {
	backend Backend
	logger  *slog.Logger
}

// NewRouter returns the gin engine serving the rentals API over backend.
func NewRouter(backend Backend, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	h := &handler{backend: backend, logger: logger}

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
	}

	apartments := r.Group("/apartments")
	{
		apartments.GET("", h.listApartments)
		apartments.GET("/:id", h.getApartment)
		apartments.POST("", h.requireToken, h.createApartment)
		apartments.PUT("/:id", h.requireToken, h.updateApartment)
		apartments.PUT("/:id/status", h.requireToken, h.setApartmentStatus)
		apartments.DELETE("/:id", h.requireToken, h.deleteApartment)
	}

	contracts := r.Group("/contracts")
	{
		contracts.GET("", h.listContracts)
		contracts.GET("/:id", h.getContract)
		contracts.POST("", h.requireToken, h.createContract)
		contracts.PUT("/:id", h.requireToken, h.updateContract)
		contracts.DELETE("/:id", h.requireToken, h.deleteContract)
	}

	r.NoRoute(func(c *gin.Context) { abortWith(c, http.StatusNotFound, msgNotFound) })
	return r
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

// requireToken rejects requests without a live bearer token.
func (h *handler) requireToken(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		abortWith(c, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	userID, err := h.backend.TokenUser(strings.TrimSpace(token))
	if err != nil {
		h.fail(c, "token check", err)
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}

// bindJSON decodes the request body into v, answering 400 on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		abortWith(c, http.StatusBadRequest, msgBadRequest)
		return false
	}
	return true
}

func pathID(c *gin.Context) types.ID {
	return types.ID(c.Param("id"))
}

func hardDelete(c *gin.Context) bool {
	return c.Query("hard") == "true"
}
