package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	VehiclesCollection      = "vehicles"
	ServicesCollection      = "services"
	TechniciansCollection   = "technicians"
	CredentialsCollection   = "credentials"
	HistoriesCollection     = "histories"
	RevokedTokensCollection = "revoked_tokens"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// NewMongoStore wires every collection of database dbName. When
// transactions is false, Tx runs its callback without a session; use that
// for standalone servers that cannot run multi-document transactions.
func NewMongoStore(client *mongo.Client, dbName string, transactions bool) *Store {
	database := client.Database(dbName)
	return &Store{
		Vehicles:    &MongoVehicleCollection{Collection: database.Collection(VehiclesCollection)},
		Services:    &MongoServiceCollection{Collection: database.Collection(ServicesCollection)},
		Technicians: &MongoTechnicianCollection{Collection: database.Collection(TechniciansCollection)},
		Credentials: &MongoCredentialCollection{Collection: database.Collection(CredentialsCollection)},
		Histories:   &MongoHistoryCollection{Collection: database.Collection(HistoriesCollection)},
		Revoked:     &MongoRevokedTokenCollection{Collection: database.Collection(RevokedTokensCollection)},
		Tx:          &MongoTransactor{Client: client, Enabled: transactions},
		closeFn:     client.Disconnect,
	}
}

// EnsureIndexes creates the unique and lookup indexes the invariants rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		VehiclesCollection: {
			{Keys: bson.D{{Key: "vin", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ServicesCollection: {
			{Keys: bson.D{{Key: "vehicle_vin", Value: 1}, {Key: "service_type", Value: 1}}},
			{Keys: bson.D{{Key: "technician_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		TechniciansCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "credential", Value: 1}}},
		},
		CredentialsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		HistoriesCollection: {
			{Keys: bson.D{{Key: "service_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		RevokedTokensCollection: {
			{Keys: bson.D{{Key: "jti", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}
	for name, models := range specs {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// MongoTransactor runs callbacks inside a MongoDB session transaction.
type MongoTransactor struct {
	Client  *mongo.Client
	Enabled bool
}

// WithTransaction implements Transactor.
func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.Enabled || t.Client == nil {
		return fn(ctx)
	}
	session, err := t.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// mapErr translates driver errors into package errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

var errNilCollection = errors.New("mongo collection is nil")
