package database

import (
	"context"
	"fmt"
	"time"

	"loserpool-go/logging"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds MongoDB connection settings
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// MongoDB wraps a client plus the application database handle
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongoConnection connects to MongoDB and verifies the connection
func NewMongoConnection(config Config) (*MongoDB, error) {
	logger := logging.WithPrefix("mongodb")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var uri string
	if config.Username != "" && config.Password != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=%s",
			config.Username, config.Password, config.Host, config.Port, config.Database, config.Database)
		logger.Infof("Connecting with authentication as user: %s", config.Username)
	} else {
		uri = fmt.Sprintf("mongodb://%s:%s/%s", config.Host, config.Port, config.Database)
		logger.Info("Connecting without authentication")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Infof("Connected to %s:%s database=%s", config.Host, config.Port, config.Database)

	return &MongoDB{
		client:   client,
		database: client.Database(config.Database),
	}, nil
}

// Close disconnects from MongoDB
func (m *MongoDB) Close() error {
	logger := logging.WithPrefix("mongodb")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		logger.Errorf("Error disconnecting: %v", err)
		return err
	}
	logger.Info("Connection closed")
	return nil
}

// TestConnection pings the server
func (m *MongoDB) TestConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB ping failed: %w", err)
	}
	return nil
}

// GetCollection returns a handle to a named collection
func (m *MongoDB) GetCollection(name string) *mongo.Collection {
	return m.database.Collection(name)
}
