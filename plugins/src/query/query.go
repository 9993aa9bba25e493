package main

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/cert-lv/docflow/pdk"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
 * Check "pdk/plugin.go" for the built-in plugin functions description
 */

func (p *plugin) Init(ctx pdk.InitContext) {
	p.Base.Init(ctx)
	p.Extend(Collection, Query, ReturnFields, Limit)
	p.SetRelationships(pdk.RelSuccess, pdk.RelOriginal, pdk.RelFailure)

	p.log = ctx.Logger()
}

/*
 * Every incoming record runs the query once,
 * found documents become new records
 */
func (p *plugin) OnTrigger(ctx context.Context, pc pdk.ProcessContext, session pdk.Session) error {
	db, err := p.DatabaseClient(pc)
	if err != nil {
		return err
	}

	opts, err := p.findOptions(pc)
	if err != nil {
		return err
	}

	collection := db.Collection(pc.Property(Collection).String())

	filter, err := convert(pc.Property(Query).String())
	if err != nil {
		for _, record := range session.Records() {
			fail(session, record, err.Error())
		}

		return nil
	}

	for _, record := range session.Records() {
		count, err := p.find(ctx, collection, filter, opts, record, session)
		if err != nil {
			p.log.Error().
				Str("collection", collection.Name()).
				Msg("Can't query documents: " + err.Error())

			fail(session, record, err.Error())
			continue
		}

		if record.Attributes == nil {
			record.Attributes = make(map[string]string)
		}
		record.Attributes[attrCount] = strconv.Itoa(count)

		session.Transfer(record, pdk.RelOriginal)
	}

	return nil
}

/*
 * Cursor batch size, projection and limit
 */
func (p *plugin) findOptions(pc pdk.ProcessContext) (*options.FindOptions, error) {
	size, _, err := p.Batching(pc)
	if err != nil {
		return nil, err
	}

	// Cursor batch size is a 32-bit value
	if size > math.MaxInt32 {
		return nil, fmt.Errorf("invalid '%s': %d is greater than %d", pdk.BatchSize.Name, size, math.MaxInt32)
	}

	opts := options.Find().SetBatchSize(int32(size))

	projection := bson.D{}
	for _, field := range p.SplitCommaList(pc.Property(ReturnFields).String()) {
		// Comma lists may contain empty elements
		if field != "" {
			projection = append(projection, bson.E{Key: field, Value: 1})
		}
	}

	if len(projection) != 0 {
		opts.SetProjection(projection)
	}

	if limit := pc.Property(Limit); limit.IsSet() {
		n, err := limit.Int()
		if err != nil {
			return nil, fmt.Errorf("invalid '%s': %w", Limit.Name, err)
		}

		opts.SetLimit(int64(n))
	}

	return opts, nil
}

/*
 * Run the query for a single incoming record.
 * Children are created only when the whole cursor is read.
 * Returns the amount of found documents
 */
func (p *plugin) find(ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptions, parent *pdk.Record, session pdk.Session) (int, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	found := [][]byte{}

	// Iterate through the results/cursor
	for cursor.Next(ctx) {
		doc := bson.M{}

		err := cursor.Decode(&doc)
		if err != nil {
			return 0, err
		}

		content, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return 0, err
		}

		found = append(found, content)
	}

	if err := cursor.Err(); err != nil {
		return 0, err
	}

	for _, content := range found {
		child := session.Create(parent, content)
		child.Attributes[attrCollection] = collection.Name()
		session.Transfer(child, pdk.RelSuccess)
	}

	p.log.Debug().
		Str("collection", collection.Name()).
		Int("found", len(found)).
		Msg("Query finished")

	return len(found), nil
}

func fail(session pdk.Session, record *pdk.Record, reason string) {
	if record.Attributes == nil {
		record.Attributes = make(map[string]string)
	}

	record.Attributes[attrError] = reason
	session.Transfer(record, pdk.RelFailure)
}

func (p *plugin) Stop() error {
	return nil
}
