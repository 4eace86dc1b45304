package handlers

import (
	"caravanshare/internal/services"
	"caravanshare/internal/utils"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	settlementService services.SettlementService
}

func NewSettlementHandler(settlementService services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// Settle pays the calling host out for every unsettled completed payment.
func (h *SettlementHandler) Settle(c *gin.Context) {
	hostID, ok := currentUser(c)
	if !ok {
		return
	}

	settlement, err := h.settlementService.SettleForHost(c.Request.Context(), hostID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Settlement created successfully", settlement)
}

func (h *SettlementHandler) ListMine(c *gin.Context) {
	hostID, ok := currentUser(c)
	if !ok {
		return
	}

	settlements, err := h.settlementService.ListForHost(c.Request.Context(), hostID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Settlements retrieved successfully", settlements, &utils.Meta{Count: len(settlements)})
}
