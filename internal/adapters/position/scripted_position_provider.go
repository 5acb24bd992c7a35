package position

import (
	"context"
	"errors"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/ports"
	"sync"
)

// ScriptedResult is one canned answer from a ScriptedPositionProvider.
type ScriptedResult struct {
	Coords domain.Coordinates
	Err    error
	// Block, when non-nil, delays the answer until it is closed or ctx ends.
	Block <-chan struct{}
}

// ScriptedPositionProvider replays queued results and counts calls.
type ScriptedPositionProvider struct {
	mu       sync.Mutex
	results  []ScriptedResult
	calls    int
	lastOpts ports.PositionOptions
}

func NewScriptedPositionProvider(results ...ScriptedResult) *ScriptedPositionProvider {
	return &ScriptedPositionProvider{results: results}
}

func (p *ScriptedPositionProvider) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (domain.Coordinates, error) {
	p.mu.Lock()
	p.calls++
	p.lastOpts = opts
	if len(p.results) == 0 {
		p.mu.Unlock()
		return domain.Coordinates{}, errors.New("scripted provider: no results left")
	}
	r := p.results[0]
	p.results = p.results[1:]
	p.mu.Unlock()

	if r.Block != nil {
		select {
		case <-r.Block:
		case <-ctx.Done():
			return domain.Coordinates{}, ctx.Err()
		}
	}

	return r.Coords, r.Err
}

func (p *ScriptedPositionProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *ScriptedPositionProvider) LastOptions() ports.PositionOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastOpts
}
