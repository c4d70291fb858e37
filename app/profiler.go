package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Frame stages profiled on the CPU side, in overlay display order.
const (
	ScopeUpload  = "upload"
	ScopeEncode  = "encode"
	ScopePresent = "present"
)

var frameScopes = []string{ScopeUpload, ScopeEncode, ScopePresent}

// Profiler times the frame stages and carries scene counters for the debug
// overlay. Scopes outside the fixed frame set are shown after it, in
// first-seen order.
type Profiler struct {
	scopes map[string]time.Duration
	starts map[string]time.Time
	counts map[string]int
	extra  []string
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]int),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.starts[name] = time.Now()
	if !p.registered(name) {
		p.extra = append(p.extra, name)
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.starts[name]; ok {
		p.scopes[name] = time.Since(start)
	}
}

func (p *Profiler) SetCount(name string, count int) {
	p.counts[name] = count
}

// Reset zeroes the timings while keeping scope registration.
func (p *Profiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
}

func (p *Profiler) registered(name string) bool {
	for _, n := range frameScopes {
		if n == name {
			return true
		}
	}
	for _, n := range p.extra {
		if n == name {
			return true
		}
	}
	return false
}

func (p *Profiler) StatsString() string {
	var sb strings.Builder

	sb.WriteString("Frame (CPU):\n")
	for _, name := range frameScopes {
		p.writeScope(&sb, name)
	}
	for _, name := range p.extra {
		p.writeScope(&sb, name)
	}

	sb.WriteString("\nScene:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-10s: %d\n", k, p.counts[k]))
	}

	return sb.String()
}

func (p *Profiler) writeScope(sb *strings.Builder, name string) {
	ms := float64(p.scopes[name].Microseconds()) / 1000.0
	sb.WriteString(fmt.Sprintf("  %-10s: %.2f ms\n", name, ms))
}
