package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"caravanshare/internal/middleware"
	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUser returns the caller or writes 401.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// pathID parses an ObjectID path parameter or writes 400.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := validators.ParseObjectID(name, c.Param(name))
	if err != nil {
		utils.HandleError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// bindJSON decodes the body and runs check on it, writing the error
// response itself when either step fails.
func bindJSON(c *gin.Context, req interface{}, check func() validators.ValidationErrors) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return false
	}
	if errs := check(); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Map())
		return false
	}
	return true
}

func readUploads(headers []*multipart.FileHeader) ([]services.FileUpload, error) {
	files := make([]services.FileUpload, 0, len(headers))
	for _, header := range headers {
		if header.Size > utils.MaxImageSize {
			return nil, utils.NewValidationError(fmt.Sprintf("%s exceeds the %d byte limit", header.Filename, utils.MaxImageSize))
		}
		f, err := header.Open()
		if err != nil {
			return nil, utils.NewValidationError("could not read " + header.Filename)
		}
		data, err := io.ReadAll(io.LimitReader(f, utils.MaxImageSize+1))
		f.Close()
		if err != nil {
			return nil, utils.NewValidationError("could not read " + header.Filename)
		}
		files = append(files, services.FileUpload{Filename: header.Filename, Data: data})
	}
	return files, nil
}
