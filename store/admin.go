package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soundstage-events/backoffice/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminRepository stores back-office accounts.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	// SetOTP stores a reset code valid until expiresAt and resets the failure count.
	SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiresAt time.Time) error
	// RecordOTPFailure counts one wrong reset code and returns the new count.
	RecordOTPFailure(ctx context.Context, id primitive.ObjectID) (int, error)
	ClearOTP(ctx context.Context, id primitive.ObjectID) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// AdminCollection is the MongoDB AdminRepository.
type AdminCollection struct {
	coll *mongo.Collection
}

// NewAdminCollection returns the repository over the "admins" collection.
func NewAdminCollection(db *mongo.Database) *AdminCollection {
	return &AdminCollection{coll: db.Collection("admins")}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *AdminCollection) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var admin models.Admin
	err := c.coll.FindOne(ctx, filter).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}

func (c *AdminCollection) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return c.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (c *AdminCollection) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

func (c *AdminCollection) Create(ctx context.Context, admin *models.Admin) error {
	now := time.Now().UTC()
	admin.Email = NormalizeEmail(admin.Email)
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	admin.CreatedAt = now
	admin.UpdatedAt = now
	if _, err := c.coll.InsertOne(ctx, admin); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (c *AdminCollection) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updated_at"] = time.Now().UTC()

	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var unsetOTP = bson.M{"otp": "", "otp_expires_at": "", "otp_attempts": ""}

func (c *AdminCollection) SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiresAt time.Time) error {
	return c.update(ctx, id, bson.M{"$set": bson.M{
		"otp":            otp,
		"otp_expires_at": expiresAt,
		"otp_attempts":   0,
	}})
}

func (c *AdminCollection) RecordOTPFailure(ctx context.Context, id primitive.ObjectID) (int, error) {
	var admin models.Admin
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"otp_attempts": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("record otp failure: %w", err)
	}
	return admin.OTPAttempts, nil
}

func (c *AdminCollection) ClearOTP(ctx context.Context, id primitive.ObjectID) error {
	return c.update(ctx, id, bson.M{"$unset": unsetOTP})
}

// SetPassword replaces the bcrypt hash and clears any pending reset code.
func (c *AdminCollection) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return c.update(ctx, id, bson.M{
		"$set":   bson.M{"password": hash},
		"$unset": unsetOTP,
	})
}

func (c *AdminCollection) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return c.update(ctx, id, bson.M{"$set": bson.M{"last_login_at": at}})
}
