package main

import (
	"fmt"
	"sync"

	"github.com/cert-lv/docflow/pdk"
)

/*
 * Records of a single processor invocation.
 * Processors may route records from several goroutines
 */
type session struct {
	records       []*pdk.Record
	created       []*pdk.Record
	routes        map[*pdk.Record]*pdk.Relationship
	relationships []*pdk.Relationship
	mx            sync.Mutex
}

/*
 * Receives incoming records and the routes processor has declared
 */
func newSession(records []*pdk.Record, relationships []*pdk.Relationship) *session {
	return &session{
		records:       records,
		created:       []*pdk.Record{},
		routes:        make(map[*pdk.Record]*pdk.Relationship),
		relationships: relationships,
	}
}

func (s *session) Records() []*pdk.Record {
	return s.records
}

func (s *session) Create(parent *pdk.Record, content []byte) *pdk.Record {
	record := &pdk.Record{
		Attributes: make(map[string]string),
		Content:    content,
	}

	if parent != nil {
		for k, v := range parent.Attributes {
			record.Attributes[k] = v
		}
	}

	s.mx.Lock()
	s.created = append(s.created, record)
	s.mx.Unlock()

	return record
}

func (s *session) Transfer(record *pdk.Record, relationship *pdk.Relationship) {
	s.mx.Lock()
	s.routes[record] = relationship
	s.mx.Unlock()
}

/*
 * Group records by relationship name.
 * Every record must be routed to a declared relationship
 */
func (s *session) routed() (map[string][]*pdk.Record, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	result := make(map[string][]*pdk.Record)

	for _, list := range [][]*pdk.Record{s.records, s.created} {
		for i, record := range list {
			relationship, ok := s.routes[record]
			if !ok {
				return nil, fmt.Errorf("Record #%d was not routed", i)
			}

			if !s.declared(relationship) {
				return nil, fmt.Errorf("Record #%d is routed to the undeclared relationship '%s'", i, relationship.Name)
			}

			result[relationship.Name] = append(result[relationship.Name], record)
		}
	}

	return result, nil
}

func (s *session) declared(relationship *pdk.Relationship) bool {
	if relationship == nil {
		return false
	}

	for _, r := range s.relationships {
		if r.Name == relationship.Name {
			return true
		}
	}

	return false
}
