package pdk

import (
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"
)

/*
 * Given by the host once, before the processor gets any work
 */
type InitContext interface {
	// Name of the processor definition
	Identifier() string

	// Logger already bound to the processor's name
	Logger() zerolog.Logger
}

/*
 * Given by the host on every invocation.
 * Read only for the processors
 */
type ProcessContext interface {
	// Configured value, or the descriptor's default when not configured
	Property(*Descriptor) PropertyValue

	// Resolve a connection service by its identifier
	Service(id string) (interface{}, error)
}

/*
 * Single configured value
 */
type PropertyValue string

func (v PropertyValue) String() string {
	return string(v)
}

func (v PropertyValue) IsSet() bool {
	return v != ""
}

func (v PropertyValue) Int() (int, error) {
	return strconv.Atoi(string(v))
}

/*
 * Unit of data moving through the flow.
 * Content is a JSON document
 */
type Record struct {
	Attributes map[string]string `json:"attributes,omitempty"`
	Content    json.RawMessage   `json:"content,omitempty"`
}

/*
 * Records of a single invocation
 */
type Session interface {
	// Incoming records
	Records() []*Record

	// New record, inheriting parent's attributes if parent is given
	Create(parent *Record, content []byte) *Record

	// Route a record, last call for the same record wins
	Transfer(*Record, *Relationship)
}
