package pdk

import (
	"sync"

	"github.com/umpc/go-sortedmap"
	"github.com/umpc/go-sortedmap/desc"
)

/*
 * Amount of records every processor has routed,
 * per relationship, busiest routes first
 */
type Stats struct {
	Processors map[string]*sortedmap.SortedMap
	mx         sync.Mutex
}

/*
 * Single route's counter
 */
type RouteCount struct {
	Relationship string `json:"relationship"`
	Count        int    `json:"count"`
}

func NewStats() *Stats {
	return &Stats{
		Processors: make(map[string]*sortedmap.SortedMap),
	}
}

/*
 * Count "n" more records sent by the processor to the relationship
 */
func (s *Stats) Update(processor, relationship string, n int) {
	if n <= 0 {
		return
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	routes, ok := s.Processors[processor]
	if !ok {
		routes = sortedmap.New(4, desc.Int)
		s.Processors[processor] = routes
	}

	if val, ok := routes.Get(relationship); ok {
		routes.Replace(relationship, val.(int)+n)
	} else {
		routes.Insert(relationship, n)
	}
}

/*
 * Export counters, busiest routes first.
 * Receives the max amount of routes per processor, 0 for all
 */
func (s *Stats) Top(limit int) (map[string][]*RouteCount, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	result := make(map[string][]*RouteCount, len(s.Processors))

	for processor, routes := range s.Processors {
		list := []*RouteCount{}

		if len(routes.Keys()) != 0 {
			iterCh, err := routes.IterCh()
			if err != nil {
				return nil, err
			}

			for rec := range iterCh.Records() {
				if limit > 0 && len(list) >= limit {
					break
				}

				list = append(list, &RouteCount{
					Relationship: rec.Key.(string),
					Count:        rec.Val.(int),
				})
			}

			iterCh.Close()
		}

		result[processor] = list
	}

	return result, nil
}
