package leads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Shape names the top-level layout of a search response.
type Shape string

const (
	// ShapeLeadArray is a bare array whose elements already look like leads.
	ShapeLeadArray Shape = "lead-array"
	// ShapeAnalysisArray is a bare array of AI analysis records.
	ShapeAnalysisArray Shape = "analysis-array"
	// ShapeLeadsField is an object with a "leads" array.
	ShapeLeadsField Shape = "leads-field"
	// ShapeDataField is an object with a "data" array.
	ShapeDataField Shape = "data-field"
	// ShapeSingle is anything else, treated as one record.
	ShapeSingle Shape = "single"
)

// Envelope is a decoded search response: its shape plus the raw records to
// normalize, in response order.
type Envelope struct {
	Shape   Shape
	Records []map[string]any
}

// Decode parses a response body. Numbers are kept as json.Number so large
// numeric ids survive. Only malformed JSON is an error.
func Decode(body []byte) (Envelope, error) {
	raw, err := decodeRaw(body)
	if err != nil {
		return Envelope{}, err
	}
	return Classify(raw), nil
}

func decodeRaw(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("leads: decode search response: %w", err)
	}
	return raw, nil
}

// Classify picks the first matching shape: array, object with "leads",
// object with "data", then single record.
func Classify(raw any) Envelope {
	switch v := raw.(type) {
	case []any:
		env := Envelope{Shape: ShapeAnalysisArray, Records: records(v)}
		for _, rec := range env.Records {
			if looksLikeLead(rec) {
				env.Shape = ShapeLeadArray
				break
			}
		}
		return env
	case map[string]any:
		if arr, ok := v["leads"].([]any); ok {
			return Envelope{Shape: ShapeLeadsField, Records: records(arr)}
		}
		if arr, ok := v["data"].([]any); ok {
			return Envelope{Shape: ShapeDataField, Records: records(arr)}
		}
		return Envelope{Shape: ShapeSingle, Records: []map[string]any{v}}
	default:
		return Envelope{Shape: ShapeSingle, Records: []map[string]any{{}}}
	}
}

// Leads normalizes every record with a shared batch time.
func (e Envelope) Leads(sc SearchContext, now time.Time) []Lead {
	out := make([]Lead, 0, len(e.Records))
	for i, rec := range e.Records {
		out = append(out, Normalize(rec, i, sc, now))
	}
	return out
}

// MapResponse classifies an already decoded response and normalizes it.
func MapResponse(raw any, sc SearchContext, now time.Time) []Lead {
	return Classify(raw).Leads(sc, now)
}

func records(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		rec, ok := item.(map[string]any)
		if !ok {
			rec = map[string]any{}
		}
		out = append(out, rec)
	}
	return out
}

func looksLikeLead(rec map[string]any) bool {
	for _, key := range leadShapeKeys {
		if _, ok := rec[key]; ok {
			return true
		}
	}
	return false
}

// jobReference returns the backend job id carried by a response, and whether
// the response is only an acknowledgement ({"jobId": "..."}) with no lead data.
func jobReference(raw any) (jobID string, ackOnly bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return "", false
	}
	jobID, _ = obj["jobId"].(string)
	if jobID == "" {
		return "", false
	}
	if _, ok := obj["leads"]; ok {
		return jobID, false
	}
	if _, ok := obj["data"]; ok {
		return jobID, false
	}
	if looksLikeLead(obj) {
		return jobID, false
	}
	return jobID, true
}
