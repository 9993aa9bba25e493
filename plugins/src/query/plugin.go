package main

import (
	"github.com/cert-lv/docflow/pdk"
	"github.com/rs/zerolog"
)

/*
 * Export symbols
 */
var (
	Name    = "query"
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

// Attributes set on the records
const (
	attrCollection = "docflow.collection"
	attrCount      = "docflow.count"
	attrError      = "docflow.error"
)

// Custom configuration fields
var (
	Collection = &pdk.Descriptor{
		Name:        "Collection",
		DisplayName: "Collection",
		Required:    true,
		Description: "The collection to query",
	}

	Query = &pdk.Descriptor{
		Name:        "Query",
		DisplayName: "Query",
		Description: "SQL WHERE clause to filter the documents, all documents match when empty. Example: size > 100 AND name LIKE 'a%'",
	}

	ReturnFields = &pdk.Descriptor{
		Name:        "Return Fields",
		DisplayName: "Return Fields",
		Description: "Comma separated document fields to return, all fields when empty",
	}

	Limit = &pdk.Descriptor{
		Name:        "Limit",
		DisplayName: "Limit",
		Description: "Max amount of documents returned per incoming record",
		Validator:   pdk.PositiveInteger,
	}
)
