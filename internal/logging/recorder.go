package logging

import (
	"sync"

	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// Level identifies which Reporter method produced an Entry.
type Level string

const (
	LevelVerbose Level = "verbose"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Entry is one recorded message.
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps every reported message in order.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level Level, f string, args []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: format(f, args)})
}

func (r *Recorder) Verbose(f string, args ...interface{}) { r.add(LevelVerbose, f, args) }
func (r *Recorder) Info(f string, args ...interface{})    { r.add(LevelInfo, f, args) }
func (r *Recorder) Success(f string, args ...interface{}) { r.add(LevelSuccess, f, args) }
func (r *Recorder) Error(f string, args ...interface{})   { r.add(LevelError, f, args) }

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the messages recorded at level, in order.
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

var _ dbtool.Reporter = (*Recorder)(nil)
