/*
 * Configuration field descriptors.
 *
 * Every processor exposes a list of descriptors, the host uses them
 * to apply defaults and validate "properties" of the processor definitions
 */

package pdk

import (
	"fmt"
	"math"
	"strconv"
)

/*
 * Validation rule of a single configured value
 */
type Validator func(value string) error

type Descriptor struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`

	// Kind of the connection service the value must refer to,
	// empty for plain values
	Service string `json:"service,omitempty"`

	Validator Validator `json:"-"`
}

/*
 * Check the given value against the descriptor's rules.
 * Empty value means the field is not set
 */
func (d *Descriptor) Validate(value string) error {
	if value == "" {
		if d.Required {
			return fmt.Errorf("'%s' is required", d.Name)
		}

		return nil
	}

	if d.Validator != nil {
		if err := d.Validator(value); err != nil {
			return fmt.Errorf("'%s' is invalid: %w", d.Name, err)
		}
	}

	return nil
}

/*
 * Accept only integers greater than zero
 */
func PositiveInteger(value string) error {
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("'%s' is not an integer", value)
	}

	if i <= 0 {
		return fmt.Errorf("%d is not a positive integer", i)
	}

	return nil
}

/*
 * Accept positive integers not greater than "max"
 */
func PositiveIntegerUpTo(max int) Validator {
	return func(value string) error {
		err := PositiveInteger(value)
		if err != nil {
			return err
		}

		// Already known to be an integer
		i, _ := strconv.Atoi(value)
		if i > max {
			return fmt.Errorf("%d is greater than %d", i, max)
		}

		return nil
	}
}

// Shared by all the document database processors
var (
	DatabaseClientService = &Descriptor{
		Name:        "DatabaseClient Service",
		DisplayName: "DatabaseClient Service",
		Required:    true,
		Description: "The DatabaseClient connection service that provides the document database connection",
		Service:     DatabaseClientServiceKind,
	}

	BatchSize = &Descriptor{
		Name:        "Batch Size",
		DisplayName: "Batch Size",
		Required:    true,
		Default:     "100",
		Description: "The number of documents per batch",
		Validator:   PositiveIntegerUpTo(math.MaxInt32),
	}

	ThreadCount = &Descriptor{
		Name:        "Thread Count",
		DisplayName: "Thread Count",
		Required:    false,
		Default:     "3",
		Description: "The number of concurrent workers handling batches",
		Validator:   PositiveInteger,
	}
)
