package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoServiceCollection implements ServiceCollection for MongoDB.
type MongoServiceCollection struct {
	Collection *mongo.Collection
}

// InsertService inserts a work order.
func (c *MongoServiceCollection) InsertService(ctx context.Context, service models.Service) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.InsertOne(ctx, service)
	return mapErr(err)
}

// FindServiceByID finds a work order by its ID.
func (c *MongoServiceCollection) FindServiceByID(ctx context.Context, id string) (*models.Service, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var service models.Service
	if err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&service); err != nil {
		return nil, mapErr(err)
	}
	return &service, nil
}

// FindOneService returns the newest service matching filter.
func (c *MongoServiceCollection) FindOneService(ctx context.Context, filter ServiceFilter) (*models.Service, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var service models.Service
	if err := c.Collection.FindOne(ctx, filter.BSON(), opts).Decode(&service); err != nil {
		return nil, mapErr(err)
	}
	return &service, nil
}

// FindServices returns matching services in insertion order.
func (c *MongoServiceCollection) FindServices(ctx context.Context, filter ServiceFilter) ([]models.Service, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, filter.BSON())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	services := []models.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// UpdateService replaces the stored service with the same ID.
func (c *MongoServiceCollection) UpdateService(ctx context.Context, service models.Service) error {
	if c.Collection == nil {
		return errNilCollection
	}
	service.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": service.ID}, service)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountServices counts matching services.
func (c *MongoServiceCollection) CountServices(ctx context.Context, filter ServiceFilter) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, filter.BSON())
}

// DistinctTechnicianIDs returns the technicians bound to matching services.
func (c *MongoServiceCollection) DistinctTechnicianIDs(ctx context.Context, filter ServiceFilter) ([]primitive.ObjectID, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	values, err := c.Collection.Distinct(ctx, "technician_id", filter.BSON())
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}
