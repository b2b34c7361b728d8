package observability

import (
	"sync"
	"time"
)

// Status is what the process reports about its knowledge base and traffic.
type Status struct {
	KnowledgeBase string    `json:"knowledge_base"`
	Source        string    `json:"source"`
	Started       time.Time `json:"started"`
	Uptime        string    `json:"uptime"`
	Requests      int64     `json:"requests"`
	LastActivity  time.Time `json:"last_activity,omitzero"`
}

type systemStatus struct {
	mu       sync.RWMutex
	kind     string
	source   string
	started  time.Time
	requests int64
	last     time.Time
}

var globalStatus = &systemStatus{started: time.Now()}

// SetKnowledgeBase records which knowledge base is serving questions.
func SetKnowledgeBase(kind, source string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.kind = kind
	globalStatus.source = source
}

// RecordRequest counts one answered question.
func RecordRequest() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.requests++
	globalStatus.last = time.Now()
}

// GetStatus retrieves a copy of the global status.
func GetStatus() Status {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return Status{
		KnowledgeBase: globalStatus.kind,
		Source:        globalStatus.source,
		Started:       globalStatus.started,
		Uptime:        time.Since(globalStatus.started).Round(time.Second).String(),
		Requests:      globalStatus.requests,
		LastActivity:  globalStatus.last,
	}
}
