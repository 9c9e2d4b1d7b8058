package pylog

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"
)

type duration struct {
	name    string
	elapsed time.Duration
	count   int
}

// Durations accumulates named wall-clock durations so that the cost of each
// analysis phase can be dumped at the end of a run.
type Durations struct {
	mu    sync.Mutex
	items map[string]*duration
}

// NewDurations constructs an empty durations accumulator.
func NewDurations() *Durations {
	return &Durations{items: make(map[string]*duration)}
}

// Record adds the time elapsed since `since` under the given name. Typical
// usage is `defer d.Record("phase", time.Now())`.
func (d *Durations) Record(name string, since time.Time) {
	if d == nil {
		return
	}
	elapsed := time.Since(since)
	d.mu.Lock()
	defer d.mu.Unlock()
	item := d.items[name]
	if item == nil {
		item = &duration{name: name}
		d.items[name] = item
	}
	item.elapsed += elapsed
	item.count++
}

// Flush writes the accumulated durations to w, longest first, and resets
// the accumulator.
func (d *Durations) Flush(w io.Writer) {
	if d == nil {
		return
	}
	d.mu.Lock()
	items := make([]*duration, 0, len(d.items))
	for _, item := range d.items {
		items = append(items, item)
	}
	d.items = make(map[string]*duration)
	d.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].elapsed > items[j].elapsed
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", item.name, item.count, item.elapsed)
	}
	tw.Flush()
}
