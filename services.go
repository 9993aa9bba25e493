package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/cert-lv/docflow/pdk"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// Enabled connection services,
	// service name -> instance
	services map[string]*mongoService
)

var _ pdk.DatabaseClientProvider = (*mongoService)(nil)

/*
 * Connection service owning a MongoDB client,
 * shared by all the processors referencing it
 */
type mongoService struct {
	def *pdk.ServiceDefinition

	client *mongo.Client
	db     *mongo.Database
	mx     sync.RWMutex
}

/*
 * Validate the definition and connect
 */
func (s *mongoService) Enable() error {
	access := s.def.Access

	// Validate necessary parameters
	if access["url"] == "" {
		return fmt.Errorf("'access.url' is not defined")
	} else if access["db"] == "" {
		return fmt.Errorf("'access.db' is not defined")
	}

	clientOptions := options.Client().ApplyURI(access["url"])

	// Set credentials if given
	if access["user"] != "" && access["password"] != "" {
		clientOptions.SetAuth(options.Credential{
			AuthSource: access["db"],
			Username:   access["user"],
			Password:   access["password"],
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.def.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("Can't connect: %s", err.Error())
	}

	// Check the connection
	err = client.Ping(ctx, nil)
	if err != nil {
		client.Disconnect(context.Background())
		return fmt.Errorf("Can't ping: %s", err.Error())
	}

	s.mx.Lock()
	s.client = client
	s.db = client.Database(access["db"])
	s.mx.Unlock()

	return nil
}

func (s *mongoService) DatabaseClient() (*mongo.Database, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	if s.db == nil {
		return nil, pdk.ErrServiceDisabled
	}

	return s.db, nil
}

/*
 * Disconnect, processors get "pdk.ErrServiceDisabled" afterwards
 */
func (s *mongoService) Disable() error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.def.Timeout)
	defer cancel()

	err := s.client.Disconnect(ctx)
	s.client = nil
	s.db = nil

	return err
}

/*
 * Enable connection services of the "services" definitions directory
 */
func setupServices() error {
	services = make(map[string]*mongoService)

	files, err := definitionFiles(config.Definitions + "/services")
	if err != nil {
		return err
	}

	for _, filename := range files {
		def := &pdk.ServiceDefinition{}

		err := loadDefinition(filename, def)
		if err != nil {
			log.Error().Msgf("Can't load service file '%s': %s", filename, err.Error())
			continue
		}

		if def.Kind != pdk.DatabaseClientServiceKind {
			log.Error().
				Str("service", def.Name).
				Str("kind", def.Kind).
				Msg("Unknown connection service kind")
			continue
		}

		if _, exists := services[def.Name]; exists {
			log.Error().
				Str("service", def.Name).
				Msg("Duplicate connection service name")
			continue
		}

		def.Timeout = defaultTimeout(def.Timeout)
		service := &mongoService{def: def}

		err = service.Enable()
		if err != nil {
			log.Error().
				Str("service", def.Name).
				Msg("Can't enable: " + err.Error())
			continue
		}

		services[def.Name] = service

		log.Info().
			Str("service", def.Name).
			Str("kind", def.Kind).
			Msg("Connection service enabled")
	}

	return nil
}

/*
 * Find an enabled connection service by its name
 */
func lookupService(id string) (interface{}, error) {
	service, ok := services[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", pdk.ErrServiceNotFound, id)
	}

	return service, nil
}

/*
 * Disconnect all the services on exit
 */
func stopServices() {
	for name, service := range services {
		err := service.Disable()

		if err != nil {
			log.Error().
				Str("service", name).
				Msg("Can't disable the service: " + err.Error())
		} else {
			log.Debug().
				Str("service", name).
				Msg("Service disabled")
		}
	}
}
