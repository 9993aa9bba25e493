package pdk

import (
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/mongo"
)

/*
 * Common part of the document database processors.
 * Embed it and implement "OnTrigger" and "Stop".
 *
 * Both lists are built during "Init" and never change afterwards,
 * so no locking is needed when the host calls processors concurrently
 */
type Base struct {
	descriptors   []*Descriptor
	relationships []*Relationship
}

/*
 * Register the shared configuration fields.
 * Embedding processors call it first and then "Extend" with their own fields
 */
func (b *Base) Init(ctx InitContext) {
	b.descriptors = []*Descriptor{
		DatabaseClientService,
		BatchSize,
		ThreadCount,
	}
}

/*
 * Append processor specific configuration fields.
 * Fields with an already known name are skipped
 */
func (b *Base) Extend(descriptors ...*Descriptor) {
	list := make([]*Descriptor, 0, len(b.descriptors)+len(descriptors))
	list = append(list, b.descriptors...)

	for _, d := range descriptors {
		if !descriptorsContain(list, d.Name) {
			list = append(list, d)
		}
	}

	b.descriptors = list
}

/*
 * Declare the routes of the processor.
 * Nothing declares them by default
 */
func (b *Base) SetRelationships(relationships ...*Relationship) {
	b.relationships = slices.Clone(relationships)
}

func (b *Base) Descriptors() []*Descriptor {
	return slices.Clone(b.descriptors)
}

/*
 * Returns nil until the embedding processor declares its routes
 */
func (b *Base) Relationships() []*Relationship {
	return slices.Clone(b.relationships)
}

/*
 * Get a client of the connection service referenced by the
 * "DatabaseClient Service" field.
 * Errors of the context and the service are returned as is
 */
func (b *Base) DatabaseClient(pc ProcessContext) (*mongo.Database, error) {
	service, err := pc.Service(pc.Property(DatabaseClientService).String())
	if err != nil {
		return nil, err
	}

	provider, ok := service.(DatabaseClientProvider)
	if !ok {
		return nil, ErrIncompatibleService
	}

	return provider.DatabaseClient()
}

/*
 * Configured batch size and amount of workers
 */
func (b *Base) Batching(pc ProcessContext) (int, int, error) {
	size, err := pc.Property(BatchSize).Int()
	if err != nil {
		return 0, 0, fmt.Errorf("invalid '%s': %w", BatchSize.Name, err)
	}

	threads, err := pc.Property(ThreadCount).Int()
	if err != nil {
		return 0, 0, fmt.Errorf("invalid '%s': %w", ThreadCount.Name, err)
	}

	return size, threads, nil
}

func (b *Base) SplitCommaList(value string) []string {
	return SplitCommaList(value)
}

func descriptorsContain(list []*Descriptor, name string) bool {
	for _, d := range list {
		if d.Name == name {
			return true
		}
	}

	return false
}
