package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

func (h *handler) listContracts(c *gin.Context) {
	out, err := h.backend.ListContracts()
	if err != nil {
		h.fail(c, "list contracts", err)
		return
	}
	if out == nil {
		out = []types.Contract{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) getContract(c *gin.Context) {
	ct, err := h.backend.GetContract(pathID(c))
	if err != nil {
		h.fail(c, "get contract", err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *handler) createContract(c *gin.Context) {
	var p types.ContractPayload
	if !bindJSON(c, &p) {
		return
	}
	ct, err := h.backend.CreateContract(p)
	if err != nil {
		h.fail(c, "create contract", err)
		return
	}
	h.logger.Info("contract created", "id", ct.ID, "apartment", ct.ApartmentID, "user", c.GetString(userIDKey))
	c.JSON(http.StatusCreated, ct)
}

func (h *handler) updateContract(c *gin.Context) {
	var p types.ContractPayload
	if !bindJSON(c, &p) {
		return
	}
	ct, err := h.backend.UpdateContract(pathID(c), p)
	if err != nil {
		h.fail(c, "update contract", err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

// deleteContract deactivates the contract, or removes it with hard=true.
func (h *handler) deleteContract(c *gin.Context) {
	id := pathID(c)
	var err error
	if hardDelete(c) {
		err = h.backend.DeleteContract(id)
	} else {
		err = h.backend.DeactivateContract(id)
	}
	if err != nil {
		h.fail(c, "delete contract", err)
		return
	}
	h.logger.Info("contract removed", "id", id, "hard", hardDelete(c), "user", c.GetString(userIDKey))
	c.Status(http.StatusNoContent)
}
