package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return mapErr(err)
}

// FindVehicles returns every vehicle.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByVIN finds a vehicle by its VIN.
func (c *MongoVehicleCollection) FindVehicleByVIN(ctx context.Context, vin string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var vehicle models.Vehicle
	if err := c.Collection.FindOne(ctx, bson.M{"vin": vin}).Decode(&vehicle); err != nil {
		return nil, mapErr(err)
	}
	return &vehicle, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var vehicle models.Vehicle
	if err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle); err != nil {
		return nil, mapErr(err)
	}
	return &vehicle, nil
}

// UpdateVehicle replaces the stored vehicle with the same ID.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	vehicle.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": vehicle.ID}, vehicle)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountVehicles counts every vehicle.
func (c *MongoVehicleCollection) CountVehicles(ctx context.Context) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{})
}
