package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

func (h *handler) listApartments(c *gin.Context) {
	out, err := h.backend.ListApartments()
	if err != nil {
		h.fail(c, "list apartments", err)
		return
	}
	if out == nil {
		out = []types.Apartment{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) getApartment(c *gin.Context) {
	a, err := h.backend.GetApartment(pathID(c))
	if err != nil {
		h.fail(c, "get apartment", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handler) createApartment(c *gin.Context) {
	var f types.ApartmentFields
	if !bindJSON(c, &f) {
		return
	}
	a, err := h.backend.CreateApartment(f)
	if err != nil {
		h.fail(c, "create apartment", err)
		return
	}
	h.logger.Info("apartment created", "id", a.ID, "user", c.GetString(userIDKey))
	c.JSON(http.StatusCreated, a)
}

func (h *handler) updateApartment(c *gin.Context) {
	var f types.ApartmentFields
	if !bindJSON(c, &f) {
		return
	}
	a, err := h.backend.UpdateApartment(pathID(c), f)
	if err != nil {
		h.fail(c, "update apartment", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handler) setApartmentStatus(c *gin.Context) {
	var body types.ApartmentStatusUpdate
	if !bindJSON(c, &body) {
		return
	}
	a, err := h.backend.SetApartmentStatus(pathID(c), body.Status)
	if err != nil {
		h.fail(c, "set apartment status", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// deleteApartment deactivates the apartment, or removes it with hard=true.
func (h *handler) deleteApartment(c *gin.Context) {
	id := pathID(c)
	var err error
	if hardDelete(c) {
		err = h.backend.DeleteApartment(id)
	} else {
		err = h.backend.DeactivateApartment(id)
	}
	if err != nil {
		h.fail(c, "delete apartment", err)
		return
	}
	h.logger.Info("apartment removed", "id", id, "hard", hardDelete(c), "user", c.GetString(userIDKey))
	c.Status(http.StatusNoContent)
}
