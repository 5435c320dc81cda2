package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTechnicianCollection implements TechnicianCollection for MongoDB.
type MongoTechnicianCollection struct {
	Collection *mongo.Collection
}

// InsertTechnician inserts a technician profile.
func (c *MongoTechnicianCollection) InsertTechnician(ctx context.Context, technician models.Technician) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.InsertOne(ctx, technician)
	return mapErr(err)
}

// FindTechnicianByID finds a technician by its ID.
func (c *MongoTechnicianCollection) FindTechnicianByID(ctx context.Context, id string) (*models.Technician, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return c.findOne(ctx, bson.M{"_id": objectID})
}

// FindTechnicianByCredential finds the profile bound to a login record.
func (c *MongoTechnicianCollection) FindTechnicianByCredential(ctx context.Context, credentialID primitive.ObjectID) (*models.Technician, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	return c.findOne(ctx, bson.M{"credential": credentialID})
}

func (c *MongoTechnicianCollection) findOne(ctx context.Context, filter bson.M) (*models.Technician, error) {
	var technician models.Technician
	if err := c.Collection.FindOne(ctx, filter).Decode(&technician); err != nil {
		return nil, mapErr(err)
	}
	return &technician, nil
}

// FindTechnicians returns technicians matching filter.
func (c *MongoTechnicianCollection) FindTechnicians(ctx context.Context, filter TechnicianFilter) ([]models.Technician, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, filter.BSON())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	technicians := []models.Technician{}
	if err := cursor.All(ctx, &technicians); err != nil {
		return nil, err
	}
	return technicians, nil
}

// SetTechnicianAssigned flips the is_assigned flag.
func (c *MongoTechnicianCollection) SetTechnicianAssigned(ctx context.Context, id primitive.ObjectID, assigned bool) error {
	if c.Collection == nil {
		return errNilCollection
	}
	update := bson.M{"$set": bson.M{"is_assigned": assigned, "updated_at": time.Now()}}
	result, err := c.Collection.UpdateByID(ctx, id, update)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountTechnicians counts every technician.
func (c *MongoTechnicianCollection) CountTechnicians(ctx context.Context) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{})
}
