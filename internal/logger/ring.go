// internal/logger/ring.go
package logger

import (
	"bytes"
	"sync"
	"time"

	"github.com/valyala/fastjson"
)

// Entry is one line of the activity pane.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
}

// Ring keeps the most recent log entries in memory. It implements io.Writer for
// JSON-encoded zap output, one entry per line.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	wrapped bool
	parser  fastjson.Parser
	total   uint64
}

// NewRing creates a ring that holds up to size entries.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{entries: make([]Entry, size)}
}

// Write parses each JSON line in p and stores it. Lines that are not JSON are kept verbatim.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range bytes.Split(p, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		r.add(r.decode(line))
	}
	return len(p), nil
}

func (r *Ring) decode(line []byte) Entry {
	v, err := r.parser.ParseBytes(line)
	if err != nil {
		return Entry{Time: time.Now(), Level: "info", Message: string(line)}
	}

	e := Entry{
		Level:   string(v.GetStringBytes("level")),
		Logger:  string(v.GetStringBytes("logger")),
		Message: string(v.GetStringBytes("msg")),
	}
	if ts, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes("time"))); err == nil {
		e.Time = ts
	} else {
		e.Time = time.Now()
	}
	return e
}

func (r *Ring) add(e Entry) {
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.wrapped = true
	}
	r.total++
}

// Sync implements zapcore.WriteSyncer.
func (r *Ring) Sync() error { return nil }

// Recent returns up to limit entries, oldest first. A limit of zero returns all.
func (r *Ring) Recent(limit int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	start := 0
	if r.wrapped {
		count = len(r.entries)
		start = r.next
	}

	all := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		all = append(all, r.entries[(start+i)%len(r.entries)])
	}
	if limit > 0 && limit < len(all) {
		all = all[len(all)-limit:]
	}
	return all
}

// Total returns how many entries were ever written.
func (r *Ring) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
