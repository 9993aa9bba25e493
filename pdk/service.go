package pdk

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind of the connection services providing a document database client
const DatabaseClientServiceKind = "mongodb"

var (
	ErrServiceNotFound     = errors.New("connection service not found")
	ErrServiceDisabled     = errors.New("connection service is not enabled")
	ErrIncompatibleService = errors.New("connection service does not provide a database client")
)

/*
 * Implemented by the connection services owning
 * a live document database connection
 */
type DatabaseClientProvider interface {
	DatabaseClient() (*mongo.Database, error)
}
