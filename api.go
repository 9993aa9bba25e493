package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cert-lv/docflow/pdk"
)

/*
 * Serves '/api/run' to pass the posted records through a processor.
 *
 * Inputs:
 *   - "processor" - name of the processor definition
 *   - "format"    - output format, JSON by default
 *   - body        - JSON array of records
 */
func runHandler(w http.ResponseWriter, r *http.Request) {
	ip := requestIP(r)
	format := r.FormValue("format")
	name := r.FormValue("processor")

	response := &APIresponse{}

	username, ok := authenticate(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		response.Error = "Can't authenticate user"
		response.send(w, ip, username, format)

		log.Error().
			Str("ip", ip).
			Str("username", username).
			Msg("Can't authenticate user")
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		response.Error = "Only POST requests are allowed"
		response.send(w, ip, username, format)
		return
	}

	n, ok := processors[name]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		response.Error = "Unknown processor requested: '" + name + "'"
		response.send(w, ip, username, format)

		log.Error().
			Str("ip", ip).
			Str("username", username).
			Str("processor", name).
			Msg("Unknown processor requested")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.API.MaxBodySize)

	records, err := decodeRecords(r.Body, config.API.MaxRecords)
	if err != nil {
		var tooLarge *http.MaxBytesError

		if errors.As(err, &tooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		} else {
			w.WriteHeader(http.StatusBadRequest)
		}

		response.Error = err.Error()
		response.send(w, ip, username, format)

		log.Error().
			Str("ip", ip).
			Str("username", username).
			Str("processor", name).
			Msg(err.Error())
		return
	}

	response = run(n, records, username)
	if response.Error != "" {
		w.WriteHeader(http.StatusInternalServerError)
	}

	response.send(w, ip, username, format)
}

/*
 * Execute the processor once with the given records
 */
func run(n *node, records []*pdk.Record, username string) *APIresponse {
	response := &APIresponse{}
	start := time.Now()

	log.Info().
		Str("username", username).
		Str("processor", n.def.Name).
		Int("records", len(records)).
		Msg("New request")

	ctx, cancel := context.WithTimeout(context.Background(), n.def.Timeout)
	defer cancel()

	s := newSession(records, n.processor.Relationships())

	err := n.processor.OnTrigger(ctx, n.context, s)
	if err != nil {
		response.Error = err.Error()

		log.Error().
			Str("username", username).
			Str("processor", n.def.Name).
			Msg("Processing error: " + err.Error())

		return response
	}

	routes, err := s.routed()
	if err != nil {
		response.Error = err.Error()

		log.Error().
			Str("username", username).
			Str("processor", n.def.Name).
			Msg("Routing error: " + err.Error())

		return response
	}

	for relationship, list := range routes {
		stats.Update(n.def.Name, relationship, len(list))
	}

	response.Routes = routes

	log.Debug().
		Str("username", username).
		Str("processor", n.def.Name).
		Dur("took", time.Since(start)).
		Msg("Records processed")

	return response
}

/*
 * Serves '/api/processors' to describe configured processors
 */
func processorsHandler(w http.ResponseWriter, r *http.Request) {
	ip := requestIP(r)
	format := r.FormValue("format")
	response := &APIresponse{}

	username, ok := authenticate(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		response.Error = "Can't authenticate user"
		response.send(w, ip, username, format)
		return
	}

	response.Processors = describeProcessors()
	response.send(w, ip, username, format)
}

/*
 * Serves '/api/stats' with the routed records counters
 */
func statsHandler(w http.ResponseWriter, r *http.Request) {
	ip := requestIP(r)
	format := r.FormValue("format")
	response := &APIresponse{}

	username, ok := authenticate(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		response.Error = "Can't authenticate user"
		response.send(w, ip, username, format)
		return
	}

	top, err := stats.Top(10)
	if err != nil {
		response.Error = "Can't export stats: " + err.Error()
	} else {
		response.Stats = top
	}

	response.send(w, ip, username, format)
}

/*
 * Processors introspection
 */
type processorInfo struct {
	Name          string              `json:"name"`
	Plugin        string              `json:"plugin"`
	Descriptors   []*pdk.Descriptor   `json:"descriptors"`
	Relationships []*pdk.Relationship `json:"relationships"`
}

func describeProcessors() []*processorInfo {
	list := []*processorInfo{}

	for _, name := range processorNames() {
		n := processors[name]

		list = append(list, &processorInfo{
			Name:          name,
			Plugin:        n.def.Plugin,
			Descriptors:   n.processor.Descriptors(),
			Relationships: n.processor.Relationships(),
		})
	}

	return list
}

/*
 * Read a JSON array of records, at most "limit" of them
 */
func decodeRecords(body io.Reader, limit int) ([]*pdk.Record, error) {
	records := []*pdk.Record{}

	err := json.NewDecoder(body).Decode(&records)
	if err != nil {
		return nil, fmt.Errorf("Invalid records: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("No records given")
	}

	if len(records) > limit {
		return nil, fmt.Errorf("Too many records: %d, max %d allowed", len(records), limit)
	}

	for i, record := range records {
		if record == nil {
			return nil, fmt.Errorf("Record #%d is null", i)
		}

		if record.Attributes == nil {
			record.Attributes = make(map[string]string)
		}
	}

	return records, nil
}

/*
 * Get requestor IP
 */
func requestIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		log.Error().Msg("User IP: " + r.RemoteAddr + " is not IP:port")
		return r.RemoteAddr
	}

	return ip
}
