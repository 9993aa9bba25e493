package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jeffail/gabs/v2"
	"github.com/cert-lv/docflow/pdk"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

/*
 * Check "pdk/plugin.go" for the built-in plugin functions description
 */

func (p *plugin) Init(ctx pdk.InitContext) {
	p.Base.Init(ctx)
	p.Extend(Collection, IDPath, Tags)
	p.SetRelationships(pdk.RelSuccess, pdk.RelFailure)

	p.log = ctx.Logger()
}

func (p *plugin) OnTrigger(ctx context.Context, pc pdk.ProcessContext, session pdk.Session) error {
	db, err := p.DatabaseClient(pc)
	if err != nil {
		return err
	}

	size, threads, err := p.Batching(pc)
	if err != nil {
		return err
	}

	collection := db.Collection(pc.Property(Collection).String())
	idPath := pc.Property(IDPath).String()
	tags := nonEmpty(p.SplitCommaList(pc.Property(Tags).String()))

	// At most "Thread Count" batches are written at once.
	// Failed documents are routed, not returned
	group := &errgroup.Group{}
	group.SetLimit(threads)

	for _, batch := range batches(session.Records(), size) {
		group.Go(func() error {
			p.write(ctx, collection, batch, idPath, tags, session)
			return nil
		})
	}

	return group.Wait()
}

/*
 * Insert a single batch and route its records
 */
func (p *plugin) write(ctx context.Context, collection *mongo.Collection, batch []*pdk.Record, idPath string, tags []string, session pdk.Session) {
	docs := make([]interface{}, 0, len(batch))
	valid := make([]*pdk.Record, 0, len(batch))

	for _, record := range batch {
		doc, err := document(record, idPath, tags)
		if err != nil {
			fail(session, record, err.Error())
			continue
		}

		docs = append(docs, doc)
		valid = append(valid, record)
	}

	if len(docs) == 0 {
		return
	}

	// Keep inserting after a failed document
	_, err := collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))

	// Index of the failed document -> reason
	failed := make(map[int]string)

	if err != nil {
		var bwe mongo.BulkWriteException

		if errors.As(err, &bwe) && bwe.WriteConcernError == nil {
			for _, we := range bwe.WriteErrors {
				failed[we.Index] = we.Message
			}
		} else {
			for i := range valid {
				failed[i] = err.Error()
			}
		}

		p.log.Error().
			Str("collection", collection.Name()).
			Int("failed", len(failed)).
			Msg("Can't write documents: " + err.Error())
	}

	for i, record := range valid {
		if reason, ok := failed[i]; ok {
			fail(session, record, reason)
		} else {
			session.Transfer(record, pdk.RelSuccess)
		}
	}

	p.log.Debug().
		Str("collection", collection.Name()).
		Int("written", len(valid)-len(failed)).
		Msg("Batch written")
}

/*
 * Convert record's JSON content into a document.
 * ID comes from the configured path, the content's own "_id"
 * or a random UUID, in this order.
 * Chosen ID is stored in the record's attributes
 */
func document(record *pdk.Record, idPath string, tags []string) (bson.M, error) {
	parsed, err := gabs.ParseJSON(record.Content)
	if err != nil {
		return nil, fmt.Errorf("Invalid JSON content: %s", err.Error())
	}

	if _, ok := parsed.Data().(map[string]interface{}); !ok {
		return nil, fmt.Errorf("Content is not a JSON object")
	}

	id := ""
	if idPath != "" {
		if value := parsed.Path(idPath).Data(); value != nil {
			id = fmt.Sprint(value)
		}
	}

	if len(tags) != 0 {
		_, err = parsed.Set(tags, "_tags")
		if err != nil {
			return nil, fmt.Errorf("Can't set tags: %s", err.Error())
		}
	}

	// Extended JSON keeps "$date", "$oid" and similar values typed
	doc := bson.M{}
	err = bson.UnmarshalExtJSON(parsed.Bytes(), false, &doc)
	if err != nil {
		return nil, fmt.Errorf("Can't convert content: %s", err.Error())
	}

	switch {
	case id != "":
		doc["_id"] = id

	// Content's own key is kept with its type
	case doc["_id"] != nil:
		id = idString(doc["_id"])

	default:
		id = uuid.NewString()
		doc["_id"] = id
	}

	if record.Attributes == nil {
		record.Attributes = make(map[string]string)
	}
	record.Attributes[attrID] = id

	return doc, nil
}

/*
 * Printable form of the document's key
 */
func idString(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}

	return fmt.Sprint(id)
}

/*
 * Cut records into batches of the given size
 */
func batches(records []*pdk.Record, size int) [][]*pdk.Record {
	result := [][]*pdk.Record{}

	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}

		result = append(result, records[start:end])
	}

	return result
}

/*
 * Comma lists may contain empty elements
 */
func nonEmpty(list []string) []string {
	result := []string{}

	for _, item := range list {
		if item != "" {
			result = append(result, item)
		}
	}

	return result
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
