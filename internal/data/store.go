package data

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"festive-study/internal/finance"
	"festive-study/internal/model"
)

var ErrRunNotFound = errors.New("run not found")

// Run is a stored analysis plus the assumptions key it was computed from.
type Run struct {
	ID        string            `json:"id"`
	Key       string            `json:"key"`
	Analysis  *finance.Analysis `json:"analysis"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// RunStore keeps analysis runs in memory for a bounded time.
// A background sweeper drops expired runs until Close is called.
type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]*Run
	byKey map[string]string
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

const DefaultSweepInterval = 5 * time.Minute

func NewRunStore(ttl, sweepEvery time.Duration) *RunStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if sweepEvery <= 0 {
		sweepEvery = DefaultSweepInterval
	}
	s := &RunStore{
		runs:  make(map[string]*Run),
		byKey: make(map[string]string),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.sweep(sweepEvery)
	return s
}

// Put stores an analysis and returns its run. If an unexpired run exists for
// the same scenario, discount rate and assumptions it is returned instead.
func (s *RunStore) Put(a *finance.Analysis) *Run {
	key := AssumptionsKey(a.Scenario, a.ROI.DiscountRate, a.Assumptions)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey[key]; ok {
		if r, ok := s.runs[id]; ok && now.Before(r.ExpiresAt) {
			return r
		}
	}
	r := &Run{
		ID:        uuid.NewString(),
		Key:       key,
		Analysis:  a,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.runs[r.ID] = r
	s.byKey[key] = r.ID
	return r
}

func (s *RunStore) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok || !s.now().Before(r.ExpiresAt) {
		return nil, ErrRunNotFound
	}
	return r, nil
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Close stops the sweeper and waits for it to exit.
func (s *RunStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *RunStore) sweep(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Expire()
		}
	}
}

// Expire removes runs past their deadline and returns how many were dropped.
func (s *RunStore) Expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, r := range s.runs {
		if !now.Before(r.ExpiresAt) {
			delete(s.runs, id)
			if s.byKey[r.Key] == id {
				delete(s.byKey, r.Key)
			}
			n++
		}
	}
	return n
}

// AssumptionsKey hashes the inputs of a run into a stable key.
func AssumptionsKey(scenario string, rate float64, a model.Assumptions) string {
	raw, _ := json.Marshal(a)
	h := sha256.New()
	h.Write([]byte(scenario))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(rate, 'g', -1, 64)))
	h.Write([]byte{0})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil))
}
