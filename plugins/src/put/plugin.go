package main

import (
	"github.com/cert-lv/docflow/pdk"
	"github.com/rs/zerolog"
)

/*
 * Export symbols
 */
var (
	Name    = "put"
	Version = "1.0.0"
	Plugin  plugin
)

/*
 * Structure to be imported by the core as a plugin
 */
type plugin struct {

	// Inherit shared configuration fields and helpers
	pdk.Base

	log zerolog.Logger
}

// Attributes set on the written records
const (
	attrID    = "docflow.id"
	attrError = "docflow.error"
)

// Custom configuration fields
var (
	Collection = &pdk.Descriptor{
		Name:        "Collection",
		DisplayName: "Collection",
		Required:    true,
		Description: "The collection documents are written to",
	}

	IDPath = &pdk.Descriptor{
		Name:        "ID JSON Path",
		DisplayName: "ID JSON Path",
		Description: "Dot separated path of the document's field to use as its ID. A random UUID is used when the field is missing",
	}

	Tags = &pdk.Descriptor{
		Name:        "Tags",
		DisplayName: "Tags",
		Description: "Comma separated tags stored in the '_tags' field of every document",
	}
)
