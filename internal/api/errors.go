package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/rentals/internal/sqlite"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// Messages returned to clients. They are shown to the console user verbatim.
const (
	msgHasContracts   = "El apartamento tiene contratos asociados y no se puede eliminar"
	msgUnavailable    = "El apartamento no está disponible para un nuevo contrato"
	msgEmailTaken     = "El correo ya está registrado"
	msgContractInUse  = "El contrato tiene un apartamento asignado y solo se puede desactivar"
	msgUnauthorized   = "Sesión inválida o expirada"
	msgBadCredentials = "Correo o contraseña incorrectos"
	msgNotFound       = "Registro no encontrado"
	msgBadRequest     = "Solicitud inválida"
	msgInternal       = "Error interno del servidor"
)

type errorResponse struct {
	Message string `json:"message"`
}

func abortWith(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: msg})
}

// statusFor maps a backend error to a status code and client message.
func statusFor(err error) (int, string) {
	var fe *types.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, fe.Reason
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, sqlite.ErrApartmentHasContracts):
		return http.StatusConflict, msgHasContracts
	case errors.Is(err, sqlite.ErrApartmentUnavailable):
		return http.StatusConflict, msgUnavailable
	case errors.Is(err, sqlite.ErrContractHasApartment):
		return http.StatusConflict, msgContractInUse
	case errors.Is(err, sqlite.ErrEmailTaken):
		return http.StatusConflict, msgEmailTaken
	case errors.Is(err, sqlite.ErrInvalidToken):
		return http.StatusUnauthorized, msgUnauthorized
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail writes err as a JSON error response and logs server faults.
func (h *handler) fail(c *gin.Context, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", "error", err)
	} else {
		h.logger.Debug(op+" rejected", "status", status, "error", err)
	}
	abortWith(c, status, msg)
}
