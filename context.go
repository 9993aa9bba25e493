package main

import (
	"fmt"

	"github.com/cert-lv/docflow/pdk"
	"github.com/rs/zerolog"
)

/*
 * Given to the processor once, on initialization
 */
type initContext struct {
	name string
	log  zerolog.Logger
}

func (c *initContext) Identifier() string {
	return c.name
}

func (c *initContext) Logger() zerolog.Logger {
	return c.log
}

/*
 * Resolved configuration of a single processor node.
 * Built once, read concurrently by all the invocations
 */
type processContext struct {
	properties map[string]string
	lookup     func(string) (interface{}, error)
}

/*
 * Validate definition's properties against the processor's descriptors.
 * Receives a function to resolve connection services
 */
func newProcessContext(def *pdk.Definition, descriptors []*pdk.Descriptor, lookup func(string) (interface{}, error)) (*processContext, error) {
	c := &processContext{
		properties: make(map[string]string, len(descriptors)),
		lookup:     lookup,
	}

	known := make([]string, 0, len(descriptors))

	for _, d := range descriptors {
		known = append(known, d.Name)

		value := def.Properties[d.Name]
		if value == "" {
			value = d.Default
		}

		err := d.Validate(value)
		if err != nil {
			return nil, err
		}

		// Referenced service must exist at this point
		if d.Service != "" && value != "" {
			if _, err := lookup(value); err != nil {
				return nil, fmt.Errorf("'%s' is invalid: %w", d.Name, err)
			}
		}

		c.properties[d.Name] = value
	}

	for name := range def.Properties {
		if !pdk.StringSliceContains(known, name) {
			return nil, fmt.Errorf("Unknown property '%s'", name)
		}
	}

	return c, nil
}

func (c *processContext) Property(d *pdk.Descriptor) pdk.PropertyValue {
	if value, ok := c.properties[d.Name]; ok {
		return pdk.PropertyValue(value)
	}

	return pdk.PropertyValue(d.Default)
}

func (c *processContext) Service(id string) (interface{}, error) {
	return c.lookup(id)
}
