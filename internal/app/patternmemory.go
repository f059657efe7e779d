package app

import (
	"sync"

	"priceActionBot/internal/domain"
)

const (
	patternWindow        = 10
	confidenceFloor      = 0.1
	confidenceRecovery   = 0.1
	consecutiveLossHalve = 2
)

// PatternMemory tracks per-setup outcome history and derives a confidence
// multiplier for each setup type. Two consecutive losses halve the
// setup's confidence; each win recovers a fixed step, capped at 1.0. The
// multiplier scales the model's continuation probability so a setup that
// has stopped working sizes down before the statistical guard notices.
type PatternMemory struct {
	mu         sync.Mutex
	results    map[string][]int // per setup: 1 win, 0 loss, most recent last
	confidence map[string]float64
}

// NewPatternMemory returns an empty memory; unseen setups start at full
// confidence.
func NewPatternMemory() *PatternMemory {
	return &PatternMemory{
		results:    make(map[string][]int),
		confidence: make(map[string]float64),
	}
}

// Record folds one outcome in and updates the setup's confidence.
func (p *PatternMemory) Record(setup domain.SetupType, won bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := string(setup)
	outcome := 0
	if won {
		outcome = 1
	}
	window := append(p.results[key], outcome)
	if len(window) > patternWindow {
		window = window[len(window)-patternWindow:]
	}
	p.results[key] = window

	conf, ok := p.confidence[key]
	if !ok {
		conf = 1.0
	}
	if !won && trailingLosses(window) >= consecutiveLossHalve {
		conf /= 2
		if conf < confidenceFloor {
			conf = confidenceFloor
		}
	} else if won {
		conf += confidenceRecovery
		if conf > 1.0 {
			conf = 1.0
		}
	}
	p.confidence[key] = conf
}

// Confidence returns the multiplier for a setup, 1.0 when unseen.
func (p *PatternMemory) Confidence(setup domain.SetupType) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conf, ok := p.confidence[string(setup)]; ok {
		return conf
	}
	return 1.0
}

func trailingLosses(window []int) int {
	n := 0
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] != 0 {
			break
		}
		n++
	}
	return n
}

// Export returns copies of the persistable maps.
func (p *PatternMemory) Export() (results map[string][]int, confidence map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	results = make(map[string][]int, len(p.results))
	for k, v := range p.results {
		results[k] = append([]int(nil), v...)
	}
	confidence = make(map[string]float64, len(p.confidence))
	for k, v := range p.confidence {
		confidence[k] = v
	}
	return results, confidence
}

// Restore replaces the memory with persisted state.
func (p *PatternMemory) Restore(results map[string][]int, confidence map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = make(map[string][]int)
	for k, v := range results {
		p.results[k] = append([]int(nil), v...)
	}
	p.confidence = make(map[string]float64)
	for k, v := range confidence {
		p.confidence[k] = v
	}
}
