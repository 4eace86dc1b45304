package mongodb

import (
	"context"
	"fmt"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.CollectionUsers),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if database.IsDuplicateKey(err) {
			return utils.NewConflictError("account already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *userRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update interfaces.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.DisplayName != nil {
		set["display_name"] = *update.DisplayName
	}
	if update.Introduction != nil {
		set["introduction"] = *update.Introduction
	}
	if update.ProfileImage != nil {
		set["profile_image"] = *update.ProfileImage
	}

	return r.findOneAndSet(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *userRepository) LinkGoogleAccount(ctx context.Context, id primitive.ObjectID, googleID string) error {
	_, err := r.findOneAndSet(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"google_id":  googleID,
		"updated_at": time.Now(),
	}})
	return err
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login_at": at}})
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepository) SetHost(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.findOneAndSet(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_host":    true,
		"updated_at": time.Now(),
	}})
	return err
}

func (r *userRepository) SetContactOnce(ctx context.Context, id primitive.ObjectID, contact string) (*models.User, bool, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"contact": ""},
			bson.M{"contact": bson.M{"$exists": false}},
		},
	}
	update := bson.M{"$set": bson.M{"contact": contact, "updated_at": time.Now()}}
	return r.setOnce(ctx, id, filter, update)
}

func (r *userRepository) SetVerified(ctx context.Context, id primitive.ObjectID) (*models.User, bool, error) {
	filter := bson.M{"_id": id, "is_verified": bson.M{"$ne": true}}
	update := bson.M{"$set": bson.M{"is_verified": true, "updated_at": time.Now()}}
	return r.setOnce(ctx, id, filter, update)
}

func (r *userRepository) SetTrustScore(ctx context.Context, id primitive.ObjectID, score, averageRating float64) (*models.User, error) {
	return r.findOneAndSet(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"trust_score":    score,
		"average_rating": averageRating,
		"updated_at":     time.Now(),
	}})
}

// AdjustTrustScore clamps inside an update pipeline so concurrent nudges
// never read-modify-write.
func (r *userRepository) AdjustTrustScore(ctx context.Context, id primitive.ObjectID, delta float64) (*models.User, error) {
	current := bson.M{"$ifNull": bson.A{"$trust_score", models.DefaultTrustScore}}
	clamped := bson.M{"$min": bson.A{
		models.MaxTrustScore,
		bson.M{"$max": bson.A{models.MinTrustScore, bson.M{"$add": bson.A{current, delta}}}},
	}}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"trust_score": clamped,
			"updated_at":  time.Now(),
		}}},
	}

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter()).Decode(&user)
	if err != nil {
		return nil, wrapFind(err, "user")
	}
	return &user, nil
}

// setOnce applies update when filter matches. When it does not, the
// current document is returned with set=false.
func (r *userRepository) setOnce(ctx context.Context, id primitive.ObjectID, filter, update bson.M) (*models.User, bool, error) {
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&user)
	if err == nil {
		return &user, true, nil
	}
	if !database.IsNotFound(err) {
		return nil, false, fmt.Errorf("failed to update user: %w", err)
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, wrapFind(err, "user")
	}
	return &user, nil
}

func (r *userRepository) findOneAndSet(ctx context.Context, filter, update bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&user); err != nil {
		return nil, wrapFind(err, "user")
	}
	return &user, nil
}
