package main

import (
	"context"
	"errors"
	"testing"

	"github.com/cert-lv/docflow/pdk"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testInitContext struct{}

func (c testInitContext) Identifier() string     { return "put" }
func (c testInitContext) Logger() zerolog.Logger { return zerolog.Nop() }

type testProcessContext struct {
	properties map[string]string
	service    interface{}
	err        error
}

func (c *testProcessContext) Property(d *pdk.Descriptor) pdk.PropertyValue {
	if v, ok := c.properties[d.Name]; ok {
		return pdk.PropertyValue(v)
	}
	return pdk.PropertyValue(d.Default)
}

func (c *testProcessContext) Service(id string) (interface{}, error) {
	if c.err != nil {
		return nil, c.err
	}

	return c.service, nil
}

/*
 * Test declared fields and routes
 */
func TestInit(t *testing.T) {
	p := &plugin{}
	p.Init(testInitContext{})

	expected := []string{"DatabaseClient Service", "Batch Size", "Thread Count", "Collection", "ID JSON Path", "Tags"}
	descriptors := p.Descriptors()

	if len(descriptors) != len(expected) {
		t.Fatalf("Invalid amount of descriptors: %d, expected: %d", len(descriptors), len(expected))
	}

	for i, d := range descriptors {
		if d.Name != expected[i] {
			t.Errorf("Invalid descriptor #%d: '%s', expected: '%s'", i, d.Name, expected[i])
		}
	}

	relationships := p.Relationships()
	if len(relationships) != 2 || relationships[0] != pdk.RelSuccess || relationships[1] != pdk.RelFailure {
		t.Errorf("Invalid relationships: %v", relationships)
	}
}

/*
 * Service errors must reach the host unchanged
 */
func TestOnTriggerServiceError(t *testing.T) {
	p := &plugin{}
	p.Init(testInitContext{})

	errService := errors.New("not enabled")

	err := p.OnTrigger(context.Background(), &testProcessContext{err: errService}, nil)
	if err != errService {
		t.Errorf("Invalid error: %v, expected: %v", err, errService)
	}
}

/*
 * Test records conversion into the documents
 */
func TestDocument(t *testing.T) {
	tables := []struct {
		content string
		idPath  string
		tags    []string
		id      string
		valid   bool
	}{
		{`{"name":"a","meta":{"key":"k1"}}`, "meta.key", nil, "k1", true},
		{`{"name":"a","num":15}`, "num", nil, "15", true},
		{`{"name":"a"}`, "", []string{"x", "y"}, "", true},
		{`{"name":"a"}`, "missing.path", nil, "", true},
		{`{"_id":"order-42","x":1}`, "", nil, "order-42", true},
		{`{"_id":"order-42","meta":{"key":"k1"}}`, "meta.key", nil, "k1", true},
		{`{"_id":"order-42"}`, "missing.path", nil, "order-42", true},
		{`{"_id":{"$oid":"5f1b2c3d4e5f601234567890"}}`, "", nil, "5f1b2c3d4e5f601234567890", true},
		{`[1,2]`, "", nil, "", false},
		{`{"name":`, "", nil, "", false},
	}

	for _, table := range tables {
		record := &pdk.Record{Content: []byte(table.content)}

		doc, err := document(record, table.idPath, table.tags)
		if !table.valid {
			if err == nil {
				t.Errorf("Invalid content accepted: %s", table.content)
			}
			continue
		}

		if err != nil {
			t.Errorf("Can't convert '%s': %s", table.content, err.Error())
			continue
		}

		id := record.Attributes[attrID]

		if table.id != "" && id != table.id {
			t.Errorf("Invalid ID of '%s': '%s', expected: '%s'", table.content, id, table.id)
		}

		if table.id == "" {
			if _, err := uuid.Parse(id); err != nil {
				t.Errorf("Generated ID of '%s' is not a UUID: '%s'", table.content, id)
			}
		}

		if idString(doc["_id"]) != id {
			t.Errorf("Document's '_id' %v differs from the record's ID '%s'", doc["_id"], id)
		}

		if table.tags != nil {
			tags, ok := doc["_tags"].(primitive.A)
			if !ok || len(tags) != len(table.tags) {
				t.Errorf("Invalid tags of '%s': %#v", table.content, doc["_tags"])
			}
		}
	}
}

/*
 * Test records splitting into batches
 */
func TestBatches(t *testing.T) {
	records := make([]*pdk.Record, 7)
	for i := range records {
		records[i] = &pdk.Record{}
	}

	tables := []struct {
		size    int
		lengths []int
	}{
		{3, []int{3, 3, 1}},
		{7, []int{7}},
		{100, []int{7}},
		{1, []int{1, 1, 1, 1, 1, 1, 1}},
	}

	for _, table := range tables {
		result := batches(records, table.size)

		if len(result) != len(table.lengths) {
			t.Errorf("Invalid amount of batches of size %d: %d, expected: %d", table.size, len(result), len(table.lengths))
			continue
		}

		for i, batch := range result {
			if len(batch) != table.lengths[i] {
				t.Errorf("Invalid batch #%d of size %d: %d records, expected: %d", i, table.size, len(batch), table.lengths[i])
			}
		}
	}

	if len(batches(nil, 10)) != 0 {
		t.Errorf("Batches created from no records")
	}
}

func TestNonEmpty(t *testing.T) {
	result := nonEmpty(pdk.SplitCommaList(",a, ,b,"))

	if len(result) != 2 || result[0] != "a" || result[1] != "b" {
		t.Errorf("Invalid non empty elements: %q", result)
	}
}
