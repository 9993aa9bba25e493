package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cert-lv/docflow/pdk"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testInitContext struct{}

func (c testInitContext) Identifier() string     { return "query" }
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
 * Test WHERE clause conversion to the MongoDB filter
 */
func TestConvert(t *testing.T) {

	// Pairs of clauses and the expected filters
	tables := []struct {
		where  string
		filter string
	}{
		{``, `primitive.M{}`},
		{`ip='10.10.10.10'`, `primitive.M{"ip":"10.10.10.10"}`},
		{`size>100`, `primitive.M{"size":primitive.M{"$gt":100}}`},
		{`size>=100`, `primitive.M{"size":primitive.M{"$gte":100}}`},
		{`size<1.5`, `primitive.M{"size":primitive.M{"$lt":1.5}}`},
		{`size!=10`, `primitive.M{"size":primitive.M{"$ne":10}}`},
		{`name LIKE 's%'`, `primitive.M{"name":primitive.M{"$regex":primitive.Regex{Pattern:"^s.*$", Options:"i"}}}`},
		{`name NOT LIKE 'a.b_'`, `primitive.M{"name":primitive.M{"$not":primitive.M{"$regex":primitive.Regex{Pattern:"^a\\.b.$", Options:"i"}}}}`},
		{`size BETWEEN 100 AND 300`, `primitive.M{"size":primitive.M{"$gte":100, "$lte":300}}`},
		{`size IN (100,300)`, `primitive.M{"size":primitive.M{"$in":primitive.A{100, 300}}}`},
		{`name NOT IN ('a','b')`, `primitive.M{"name":primitive.M{"$nin":primitive.A{"a", "b"}}}`},
		{`email = exist`, `primitive.M{"email":primitive.M{"$exists":true}}`},
		{`email != exist`, `primitive.M{"email":primitive.M{"$exists":false}}`},
		{`meta.owner='k'`, `primitive.M{"meta.owner":"k"}`},
		{`name='sarah' and age!=40 and (country='LV' or country='AU')`, `primitive.M{"$and":primitive.A{primitive.M{"$and":primitive.A{primitive.M{"name":"sarah"}, primitive.M{"age":primitive.M{"$ne":40}}}}, primitive.M{"$or":primitive.A{primitive.M{"country":"LV"}, primitive.M{"country":"AU"}}}}}`},
	}

	for _, table := range tables {
		filter, err := convert(table.where)
		if err != nil {
			t.Errorf("Can't convert '%s': %s", table.where, err.Error())
			continue
		}

		if fmt.Sprintf("%#v", filter) != table.filter {
			t.Errorf("Invalid converted filter of '%s': %#v, expected: %s", table.where, filter, table.filter)
		}
	}
}

/*
 * Test unsupported clauses are rejected
 */
func TestConvertInvalid(t *testing.T) {
	for _, where := range []string{
		`name =`,
		`name = other`,
		`1 = name`,
		`name='a' ORDER BY name`,
		`name='a' LIMIT 5`,
	} {
		if _, err := convert(where); err == nil {
			t.Errorf("Invalid clause accepted: '%s'", where)
		}
	}
}

/*
 * Test declared fields and routes
 */
func TestInit(t *testing.T) {
	p := &plugin{}
	p.Init(testInitContext{})

	expected := []string{"DatabaseClient Service", "Batch Size", "Thread Count", "Collection", "Query", "Return Fields", "Limit"}
	descriptors := p.Descriptors()

	if len(descriptors) != len(expected) {
		t.Fatalf("Invalid amount of descriptors: %d, expected: %d", len(descriptors), len(expected))
	}

	for i, d := range descriptors {
		if d.Name != expected[i] {
			t.Errorf("Invalid descriptor #%d: '%s', expected: '%s'", i, d.Name, expected[i])
		}
	}

	if len(p.Relationships()) != 3 {
		t.Errorf("Invalid relationships: %v", p.Relationships())
	}
}

/*
 * Test find options built from the configuration
 */
func TestFindOptions(t *testing.T) {
	p := &plugin{}
	p.Init(testInitContext{})

	opts, err := p.findOptions(&testProcessContext{
		properties: map[string]string{
			"Batch Size":    "50",
			"Return Fields": "name, meta.owner,",
			"Limit":         "10",
		},
	})
	if err != nil {
		t.Fatalf("Can't build options: %s", err.Error())
	}

	if opts.BatchSize == nil || *opts.BatchSize != 50 {
		t.Errorf("Invalid batch size: %v, expected: 50", opts.BatchSize)
	}

	if opts.Limit == nil || *opts.Limit != 10 {
		t.Errorf("Invalid limit: %v, expected: 10", opts.Limit)
	}

	projection, ok := opts.Projection.(primitive.D)
	if !ok || len(projection) != 2 || projection[0].Key != "name" || projection[1].Key != "meta.owner" {
		t.Errorf("Invalid projection: %#v", opts.Projection)
	}

	opts, err = p.findOptions(&testProcessContext{})
	if err != nil {
		t.Fatalf("Can't build default options: %s", err.Error())
	}

	if opts.Projection != nil || opts.Limit != nil {
		t.Errorf("Unexpected default projection or limit: %#v, %v", opts.Projection, opts.Limit)
	}

	// Cursor batch size can't overflow
	_, err = p.findOptions(&testProcessContext{
		properties: map[string]string{"Batch Size": "3000000000"},
	})
	if err == nil {
		t.Errorf("Batch size above the 32-bit limit accepted")
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
