package handlers

import (
	"mime/multipart"

	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req validators.UserUpdateRequest
	if !bindJSON(c, &req, func() validators.ValidationErrors { return validators.ValidateUserUpdate(&req) }) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &services.ProfileInput{
		DisplayName:  req.DisplayName,
		Introduction: req.Introduction,
		Contact:      req.Contact,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", user)
}

func (h *UserHandler) Verify(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.VerifyIdentity(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Identity verified", user)
}

// UploadPhoto replaces the profile image with the "photo" form file.
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		utils.BadRequestResponse(c, "No photo provided")
		return
	}

	files, err := readUploads([]*multipart.FileHeader{header})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	user, err := h.userService.UploadProfileImage(c.Request.Context(), userID, files[0])
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile image updated successfully", user)
}

func (h *UserHandler) GetPublic(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	profile, err := h.userService.GetPublicProfile(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", profile)
}
