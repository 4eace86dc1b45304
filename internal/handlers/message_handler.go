package handlers

import (
	"strconv"

	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(c *gin.Context) {
	senderID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.MessageCreateRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateMessageCreate(&req) }) {
		return
	}

	recipientID, _ := primitive.ObjectIDFromHex(req.RecipientID)
	message, err := h.messageService.Send(c.Request.Context(), senderID, &services.SendMessageInput{
		RecipientID: recipientID,
		Content:     req.Content,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Message sent successfully", message)
}

func (h *MessageHandler) Inbox(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	messages, err := h.messageService.Inbox(c.Request.Context(), userID, limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Messages retrieved successfully", messages, &utils.Meta{Count: len(messages)})
}

// Conversation returns the thread with another user and marks it read.
func (h *MessageHandler) Conversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	messages, err := h.messageService.Conversation(c.Request.Context(), userID, otherID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Conversation retrieved successfully", messages, &utils.Meta{Count: len(messages)})
}
