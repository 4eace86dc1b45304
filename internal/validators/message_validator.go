package validators

import "strings"

type MessageCreateRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,object_id"`
	Content     string `json:"content" validate:"required,max=2000"`
}

func ValidateMessageCreate(req *MessageCreateRequest) ValidationErrors {
	req.Content = strings.TrimSpace(req.Content)
	return ValidateStruct(req)
}
