package leads

import (
	"errors"
	"reflect"
	"testing"
)

func sampleBatch() []Lead {
	return MapResponse([]any{
		map[string]any{"name": "A", "id": "a"},
		map[string]any{"name": "B", "id": "b"},
		map[string]any{"name": "C", "id": "c"},
	}, restaurantSearch, batchTime)
}

func TestPipeline_SetStageTouchesOnlyTarget(t *testing.T) {
	batch := sampleBatch()
	p := NewPipeline(batch)
	before := p.Leads()

	updated, err := p.SetStage("b-1", StageQualified)
	if err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	if updated.Stage != StageQualified || updated.Name != "B" {
		t.Fatalf("unexpected updated lead %#v", updated)
	}

	after := p.Leads()
	for i := range after {
		if i == 1 {
			want := before[1]
			want.Stage = StageQualified
			if !reflect.DeepEqual(after[1], want) {
				t.Fatalf("target changed beyond stage: %#v", after[1])
			}
			continue
		}
		if !reflect.DeepEqual(after[i], before[i]) {
			t.Fatalf("lead %d changed: %#v", i, after[i])
		}
	}
	if batch[1].Stage != StageNew {
		t.Fatalf("pipeline must not alias the input slice")
	}
}

func TestPipeline_SetStageErrors(t *testing.T) {
	p := NewPipeline(sampleBatch())
	if _, err := p.SetStage("missing", StageWon); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
	if _, err := p.SetStage("a-0", Stage("Lost")); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}
}

func TestPipeline_FreeReassignment(t *testing.T) {
	p := NewPipeline(sampleBatch())
	for _, st := range []Stage{StageWon, StageNew, StageDisqualified, StageContacted} {
		if _, err := p.SetStage("a-0", st); err != nil {
			t.Fatalf("SetStage(%s): %v", st, err)
		}
		got, _ := p.Get("a-0")
		if got.Stage != st {
			t.Fatalf("expected %s, got %s", st, got.Stage)
		}
	}
}

func TestPipeline_ByStageAndCounts(t *testing.T) {
	p := NewPipeline(sampleBatch())
	if _, err := p.SetStage("c-2", StageWon); err != nil {
		t.Fatalf("SetStage: %v", err)
	}

	cols := p.ByStage()
	if len(cols) != len(Stages()) {
		t.Fatalf("expected %d columns, got %d", len(Stages()), len(cols))
	}
	for i, st := range Stages() {
		if cols[i].Stage != st {
			t.Fatalf("column %d: expected %s, got %s", i, st, cols[i].Stage)
		}
		if cols[i].Leads == nil {
			t.Fatalf("column %s has nil leads", st)
		}
	}
	if len(cols[0].Leads) != 2 || cols[0].Leads[0].Name != "A" || cols[0].Leads[1].Name != "B" {
		t.Fatalf("unexpected New column %#v", cols[0].Leads)
	}

	counts := p.Counts()
	if counts[StageNew] != 2 || counts[StageWon] != 1 || counts[StageContacted] != 0 {
		t.Fatalf("unexpected counts %#v", counts)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 leads, got %d", p.Len())
	}
}

func TestPipeline_EmptyBatch(t *testing.T) {
	p := NewPipeline(nil)
	if got := p.Leads(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if _, ok := p.Get("x"); ok {
		t.Fatalf("expected no lead")
	}
}
