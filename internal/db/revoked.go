package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRevokedTokenCollection implements RevokedTokenCollection for MongoDB.
// Expired entries are removed by the TTL index on expires_at.
type MongoRevokedTokenCollection struct {
	Collection *mongo.Collection
}

// Revoke records jti as revoked until expiresAt. Revoking twice is a no-op.
func (c *MongoRevokedTokenCollection) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if c.Collection == nil {
		return errNilCollection
	}
	doc := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}
	opts := options.Update().SetUpsert(true)
	_, err := c.Collection.UpdateOne(ctx, bson.M{"jti": jti}, bson.M{"$setOnInsert": doc}, opts)
	return mapErr(err)
}

// IsRevoked reports whether jti has been revoked and has not yet expired.
func (c *MongoRevokedTokenCollection) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if c.Collection == nil {
		return false, errNilCollection
	}
	filter := bson.M{"jti": jti, "expires_at": bson.M{"$gt": time.Now()}}
	n, err := c.Collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
