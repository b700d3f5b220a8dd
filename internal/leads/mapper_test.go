package leads

import (
	"reflect"
	"testing"
)

func TestDecode_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape Shape
		count int
	}{
		{"lead array", `[{"name":"A"},{"foo":1}]`, ShapeLeadArray, 2},
		{"analysis array", `[{"message":{"content":"Oven"}},{"equipmentRecommendation":"Range"}]`, ShapeAnalysisArray, 2},
		{"empty array", `[]`, ShapeAnalysisArray, 0},
		{"leads field", `{"leads":[{"name":"A"}],"data":[{},{}]}`, ShapeLeadsField, 1},
		{"data field", `{"data":[{"name":"A"},{"name":"B"}]}`, ShapeDataField, 2},
		{"leads not array", `{"leads":"none","data":[{}]}`, ShapeDataField, 1},
		{"single object", `{"name":"Solo"}`, ShapeSingle, 1},
		{"scalar", `42`, ShapeSingle, 1},
		{"null", `null`, ShapeSingle, 1},
		{"string", `"hello"`, ShapeSingle, 1},
		{"non-object elements", `[1,"x",null,{"name":"A"}]`, ShapeLeadArray, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Shape != tt.shape {
				t.Fatalf("expected shape %s, got %s", tt.shape, env.Shape)
			}
			if len(env.Records) != tt.count {
				t.Fatalf("expected %d records, got %d", tt.count, len(env.Records))
			}
			leads := env.Leads(restaurantSearch, batchTime)
			if len(leads) != tt.count {
				t.Fatalf("expected %d leads, got %d", tt.count, len(leads))
			}
			for _, l := range leads {
				if l.ID == "" || l.Name == "" || l.Stage != StageNew || l.EquipmentRecommendations == nil {
					t.Fatalf("lead missing required fields: %#v", l)
				}
			}
		})
	}
}

func TestDecode_SyntaxError(t *testing.T) {
	if _, err := Decode([]byte(`{"leads":[`)); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestMapResponse_ScenarioA(t *testing.T) {
	raw := []any{map[string]any{"name": "Joe's Diner", "address": "1 Main St", "category": "Restaurant"}}
	leads := MapResponse(raw, SearchContext{Industry: "Restaurants & Food Service"}, batchTime)

	if len(leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(leads))
	}
	if leads[0].Name != "Joe's Diner" || leads[0].Stage != StageNew {
		t.Fatalf("unexpected lead %#v", leads[0])
	}
	if eq := leads[0].EquipmentRecommendations; eq == nil || len(eq) != 0 {
		t.Fatalf("expected empty, non-nil equipment list, got %#v", eq)
	}
}

func TestMapResponse_ScenarioB(t *testing.T) {
	raw := map[string]any{"message": map[string]any{"content": "1. Commercial oven\n2. Deep fryer\n3. POS system"}}
	leads := MapResponse(raw, SearchContext{Industry: "Restaurants & Food Service"}, batchTime)

	if len(leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(leads))
	}
	want := []string{"Commercial oven", "Deep fryer", "POS system"}
	if !reflect.DeepEqual(leads[0].EquipmentRecommendations, want) {
		t.Fatalf("expected %v, got %v", want, leads[0].EquipmentRecommendations)
	}
}

func TestMapResponse_ScenarioC(t *testing.T) {
	leads := MapResponse(map[string]any{"primaryEmail": "NOT FOUND"}, restaurantSearch, batchTime)
	if len(leads) != 1 || leads[0].Email != nil {
		t.Fatalf("expected one lead with nil email, got %#v", leads)
	}
}

func TestMapResponse_NeverPanics(t *testing.T) {
	inputs := []any{
		nil,
		true,
		3.5,
		"text",
		[]any{},
		[]any{nil, []any{1}},
		map[string]any{"leads": nil},
		map[string]any{"message": "not an object"},
		map[string]any{"message": map[string]any{"content": 12}},
		map[string]any{"equipmentRecommendation": []any{1, "Oven"}},
		map[string]any{"name": map[string]any{"nested": true}},
	}
	for _, in := range inputs {
		leads := MapResponse(in, restaurantSearch, batchTime)
		for _, l := range leads {
			if l.ID == "" || l.Name == "" {
				t.Fatalf("invalid lead for %#v: %#v", in, l)
			}
		}
	}
}

func TestJobReference(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		jobID   string
		ackOnly bool
	}{
		{"ack only", map[string]any{"jobId": "job-1", "status": "queued"}, "job-1", true},
		{"with leads", map[string]any{"jobId": "job-2", "leads": []any{}}, "job-2", false},
		{"lead-like", map[string]any{"jobId": "job-3", "name": "A"}, "job-3", false},
		{"no job", map[string]any{"leads": []any{}}, "", false},
		{"array", []any{map[string]any{"jobId": "x"}}, "", false},
		{"non-string id", map[string]any{"jobId": 7}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobID, ackOnly := jobReference(tt.raw)
			if jobID != tt.jobID || ackOnly != tt.ackOnly {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tt.jobID, tt.ackOnly, jobID, ackOnly)
			}
		})
	}
}
