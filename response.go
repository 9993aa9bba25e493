package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cert-lv/docflow/pdk"
	"github.com/olekukonko/tablewriter"
	"github.com/yukithm/json2csv"
)

/*
 * Structure that API returns
 */
type APIresponse struct {
	// Processed records grouped by relationship name
	Routes map[string][]*pdk.Record `json:"routes,omitempty"`

	// Processors introspection
	Processors []*processorInfo `json:"processors,omitempty"`

	// Routed records counters
	Stats map[string][]*pdk.RouteCount `json:"stats,omitempty"`

	Error string `json:"error,omitempty"`
}

/*
 * Send results to the API user.
 * Receives user's IP, name and output format
 */
func (a *APIresponse) send(w http.ResponseWriter, ip, username, format string) {
	_, err := fmt.Fprint(w, a.format(format))
	if err != nil {
		log.Error().
			Str("ip", ip).
			Str("username", username).
			Msg("Can't send an API response: " + err.Error())
	}
}

/*
 * Format output data.
 * Receives a requested format, JSON will be used by default
 */
func (a *APIresponse) format(f string) string {

	// Validate the format value
	if f != "" && f != "json" && f != "table" {
		log.Error().Msg("Unexpected API response format requested: '" + f + "', JSON used instead")
		a.Error = "Unexpected API response format: '" + f + "', JSON used instead. " + a.Error
		f = "json"
	}

	if f != "table" {
		output, err := formatTo(a, "json")
		if err != nil {
			return `{"error":"` + err.Error() + `"}`
		}

		return output
	}

	output := ""

	if a.Error != "" {
		output += "Error: " + a.Error + "\n"
	}

	sections := []interface{}{}

	if len(a.Routes) != 0 {
		sections = append(sections, a.routeRows())
	}

	if len(a.Processors) != 0 {
		sections = append(sections, a.Processors)
	}

	if len(a.Stats) != 0 {
		sections = append(sections, a.statsRows())
	}

	for i, section := range sections {
		table, err := formatTo(section, "table")
		if err != nil {
			output += "Error: " + err.Error() + "\n"
			continue
		}

		if i != 0 || a.Error != "" {
			output += "\n"
		}
		output += table
	}

	return output
}

/*
 * One row per routed record, relationships in alphabetical order
 */
func (a *APIresponse) routeRows() []map[string]interface{} {
	names := make([]string, 0, len(a.Routes))
	for name := range a.Routes {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := []map[string]interface{}{}

	for _, name := range names {
		for _, record := range a.Routes[name] {
			row := map[string]interface{}{
				"relationship": name,
				"attributes":   record.Attributes,
			}

			var content interface{}
			if json.Unmarshal(record.Content, &content) == nil {
				row["content"] = content
			} else {
				row["content"] = string(record.Content)
			}

			rows = append(rows, row)
		}
	}

	return rows
}

/*
 * One row per processor's route
 */
func (a *APIresponse) statsRows() []map[string]interface{} {
	names := make([]string, 0, len(a.Stats))
	for name := range a.Stats {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := []map[string]interface{}{}

	for _, name := range names {
		for _, route := range a.Stats[name] {
			rows = append(rows, map[string]interface{}{
				"processor":    name,
				"relationship": route.Relationship,
				"count":        route.Count,
			})
		}
	}

	return rows
}

/*
 * Format the given single object
 */
func formatTo(data interface{}, format string) (string, error) {
	if format == "table" {
		// Generic JSON values only, so nested structures
		// and raw messages get flattened the same way
		b, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("Can't marshal API response: %s", err.Error())
		}

		var generic interface{}
		err = json.Unmarshal(b, &generic)
		if err != nil {
			return "", fmt.Errorf("Can't unmarshal API response: %s", err.Error())
		}

		// JSON to CSV
		// to get all the existing headers
		csvSTR, err := json2csv.JSON2CSV(generic)
		if err != nil {
			return "", fmt.Errorf("Can't convert API response to CSV: %s", err.Error())
		}

		buf := bytes.NewBufferString("")
		wr := json2csv.NewCSVWriter(buf)
		wr.HeaderStyle = json2csv.DotNotationStyle

		err = wr.WriteCSV(csvSTR)
		if err != nil {
			return "", fmt.Errorf("Can't format API response to CSV: %s", err.Error())
		}

		// Read csv values using csv.Reader.
		// Strings splitting by \n and "," is not enough as some fields
		// may contain them
		csvReader := csv.NewReader(strings.NewReader(buf.String()))
		rows, err := csvReader.ReadAll()
		if err != nil {
			return "", fmt.Errorf("Can't parse CSV: %s", err.Error())
		}

		if len(rows) == 0 {
			return "", nil
		}

		// Clear CSV data from buffer to render a table
		buf.Reset()
		table := tablewriter.NewWriter(buf)
		table.SetHeader(rows[0])

		for i := 1; i < len(rows); i++ {
			table.Append(rows[i])
		}

		table.Render()

		return buf.String(), nil
	}

	// Return JSON by default
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("Can't format API response to JSON: %s", err.Error())
	}

	return string(b), nil
}
