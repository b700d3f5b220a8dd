package leads

import (
	"fmt"
	"sync"
)

// Column is one stage of the board with its leads in batch order.
type Column struct {
	Stage Stage  `json:"stage"`
	Leads []Lead `json:"leads"`
}

// Pipeline holds one session's lead batch keyed by id.
type Pipeline struct {
	mu    sync.RWMutex
	leads []Lead
	index map[string]int
}

// NewPipeline copies leads into a pipeline. If ids repeat, the first
// occurrence owns the id.
func NewPipeline(leads []Lead) *Pipeline {
	p := &Pipeline{
		leads: make([]Lead, len(leads)),
		index: make(map[string]int, len(leads)),
	}
	copy(p.leads, leads)
	for i, l := range p.leads {
		if _, dup := p.index[l.ID]; !dup {
			p.index[l.ID] = i
		}
	}
	return p
}

// Leads returns a copy of the batch in order.
func (p *Pipeline) Leads() []Lead {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Lead, len(p.leads))
	copy(out, p.leads)
	return out
}

// Len returns the number of leads.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.leads)
}

// Get returns the lead with the given id.
func (p *Pipeline) Get(id string) (Lead, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.index[id]
	if !ok {
		return Lead{}, false
	}
	return p.leads[i], true
}

// SetStage moves one lead to stage. No other lead is touched.
func (p *Pipeline) SetStage(id string, stage Stage) (Lead, error) {
	if !stage.Valid() {
		return Lead{}, fmt.Errorf("leads: %q: %w", stage, ErrInvalidStage)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i, ok := p.index[id]
	if !ok {
		return Lead{}, fmt.Errorf("leads: %s: %w", id, ErrLeadNotFound)
	}
	p.leads[i].Stage = stage
	return p.leads[i], nil
}

// ByStage groups leads into board columns in stage order. Every stage gets a
// column, even when empty.
func (p *Pipeline) ByStage() []Column {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cols := make([]Column, len(stageOrder))
	pos := make(map[Stage]int, len(stageOrder))
	for i, st := range stageOrder {
		cols[i] = Column{Stage: st, Leads: []Lead{}}
		pos[st] = i
	}
	for _, l := range p.leads {
		i, ok := pos[l.Stage]
		if !ok {
			i = pos[StageNew]
		}
		cols[i].Leads = append(cols[i].Leads, l)
	}
	return cols
}

// Counts returns the number of leads per stage.
func (p *Pipeline) Counts() map[Stage]int {
	counts := make(map[Stage]int, len(stageOrder))
	for _, col := range p.ByStage() {
		counts[col.Stage] = len(col.Leads)
	}
	return counts
}
