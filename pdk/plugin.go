package pdk

import (
	"context"
)

/*
 * Plugin interface to be implemented by the processor plugins.
 * The host never knows anything else about them
 */
type Processor interface {
	// Called once before any other method
	Init(InitContext)

	// Supported configuration fields
	Descriptors() []*Descriptor

	// Routes records can be sent to
	Relationships() []*Relationship

	// Handle session's records
	OnTrigger(context.Context, ProcessContext, Session) error

	// Release resources when the host stops
	Stop() error
}
