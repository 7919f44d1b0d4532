package statsd

import (
	"sync"
	"time"
)

// Sample is one metric observation captured by Recorder.
type Sample struct {
	Name  string
	Value float64
	Tags  map[string]string
}

// Recorder is an in-memory Sink. The admin CLI uses it to summarise a one-off sweep,
// and tests use it to assert emitted metrics.
type Recorder struct {
	mu      sync.Mutex
	counts  []Sample
	gauges  []Sample
	timings []Sample
}

var _ Sink = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Count records a counter increment.
func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.add(&r.counts, Sample{Name: name, Value: float64(value), Tags: cloneTags(tags)})
}

// Gauge records a gauge value.
func (r *Recorder) Gauge(name string, value float64, tags map[string]string) {
	r.add(&r.gauges, Sample{Name: name, Value: value, Tags: cloneTags(tags)})
}

// Timing records a duration in milliseconds.
func (r *Recorder) Timing(name string, value time.Duration, tags map[string]string) {
	r.add(&r.timings, Sample{Name: name, Value: float64(value) / float64(time.Millisecond), Tags: cloneTags(tags)})
}

// Counts returns recorded counter samples named name.
func (r *Recorder) Counts(name string) []Sample { return r.filter(r.counts, name) }

// Gauges returns recorded gauge samples named name.
func (r *Recorder) Gauges(name string) []Sample { return r.filter(r.gauges, name) }

// Timings returns recorded timing samples named name.
func (r *Recorder) Timings(name string) []Sample { return r.filter(r.timings, name) }

// Sum adds the values of every counter named name.
func (r *Recorder) Sum(name string) int64 {
	var total float64
	for _, s := range r.Counts(name) {
		total += s.Value
	}
	return int64(total)
}

func (r *Recorder) add(dst *[]Sample, s Sample) {
	r.mu.Lock()
	*dst = append(*dst, s)
	r.mu.Unlock()
}

func (r *Recorder) filter(src []Sample, name string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sample
	for _, s := range src {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}
