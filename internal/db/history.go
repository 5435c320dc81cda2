package db

import (
	"context"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHistoryCollection implements HistoryCollection for MongoDB.
type MongoHistoryCollection struct {
	Collection *mongo.Collection
}

// InsertHistory appends a history record.
func (c *MongoHistoryCollection) InsertHistory(ctx context.Context, history models.History) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.InsertOne(ctx, history)
	return mapErr(err)
}

// FindHistories returns every history record, newest first.
func (c *MongoHistoryCollection) FindHistories(ctx context.Context) ([]models.History, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	histories := []models.History{}
	if err := cursor.All(ctx, &histories); err != nil {
		return nil, err
	}
	return histories, nil
}

// FindHistoryByServiceID finds the history written for a service.
func (c *MongoHistoryCollection) FindHistoryByServiceID(ctx context.Context, serviceID primitive.ObjectID) (*models.History, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var history models.History
	if err := c.Collection.FindOne(ctx, bson.M{"service_id": serviceID}).Decode(&history); err != nil {
		return nil, mapErr(err)
	}
	return &history, nil
}
