package mongodb

import (
	"fmt"

	"caravanshare/internal/utils"
	"caravanshare/pkg/database"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// wrapFind maps a missing document to a typed not-found error.
func wrapFind(err error, resource string) error {
	if database.IsNotFound(err) {
		return utils.NewNotFoundError(resource)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
