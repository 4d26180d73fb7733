package app

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Profiler records wall time per named stage and free-form counters.
type Profiler struct {
	Stages map[string]time.Duration
	Counts map[string]int
	Order  []string

	started map[string]time.Time
	now     func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Stages:  make(map[string]time.Duration),
		Counts:  make(map[string]int),
		started: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (p *Profiler) Begin(name string) {
	p.started[name] = p.now()
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
}

// End adds the time since the matching Begin. Repeated stages accumulate.
func (p *Profiler) End(name string) time.Duration {
	start, ok := p.started[name]
	if !ok {
		return 0
	}
	delete(p.started, name)
	d := p.now().Sub(start)
	p.Stages[name] += d
	return d
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

func (p *Profiler) String() string {
	var sb strings.Builder
	sb.WriteString("Stages:\n")
	for _, name := range p.Order {
		ms := float64(p.Stages[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "  %-15s: %.2f ms\n", name, ms)
	}

	sb.WriteString("\nCounts:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.Counts[k])
	}
	return sb.String()
}
