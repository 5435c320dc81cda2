package db

import (
	"context"
	"strings"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCredentialCollection implements CredentialCollection for MongoDB.
type MongoCredentialCollection struct {
	Collection *mongo.Collection
}

// InsertCredential inserts a login record. Emails are stored lowercase.
func (c *MongoCredentialCollection) InsertCredential(ctx context.Context, credential models.Credential) error {
	if c.Collection == nil {
		return errNilCollection
	}
	credential.Email = strings.ToLower(credential.Email)
	_, err := c.Collection.InsertOne(ctx, credential)
	return mapErr(err)
}

// FindCredentialByID finds a login record by its ID.
func (c *MongoCredentialCollection) FindCredentialByID(ctx context.Context, id string) (*models.Credential, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var credential models.Credential
	if err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&credential); err != nil {
		return nil, mapErr(err)
	}
	return &credential, nil
}

// FindCredentialByEmail finds a login record by email, case-insensitively.
func (c *MongoCredentialCollection) FindCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var credential models.Credential
	if err := c.Collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&credential); err != nil {
		return nil, mapErr(err)
	}
	return &credential, nil
}
