// Package jobstore keeps the session view of the driver's jobs. It is the
// single source of "current known state" for the local API: it holds either
// the last successfully fetched data or the last reconciled commit, never a
// speculative update.
package jobstore

import (
	"sync"

	"github.com/fleetworks/courier-agent/internal/agent/model"
)

type Store interface {
	// ReplaceAll installs a freshly fetched summary list, preserving its
	// order. Jobs absent from the new list are simply not carried over.
	ReplaceAll(jobs []model.Job)
	// Upsert replaces the entry with a matching id in place, or appends.
	Upsert(job model.Job)
	Get(id int64) (model.Job, bool)
	List() []model.Job
	// SetDetail stores the full detail for one job and upserts its summary.
	SetDetail(detail model.JobDetail)
	Detail(id int64) (model.JobDetail, bool)
}

type memoryStore struct {
	mu      sync.RWMutex
	order   []int64
	jobs    map[int64]model.Job
	details map[int64]model.JobDetail
}

func NewStore() Store {
	return &memoryStore{
		jobs:    make(map[int64]model.Job),
		details: make(map[int64]model.JobDetail),
	}
}

func (s *memoryStore) ReplaceAll(jobs []model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = make([]int64, 0, len(jobs))
	s.jobs = make(map[int64]model.Job, len(jobs))
	for _, job := range jobs {
		if _, ok := s.jobs[job.ID]; !ok {
			s.order = append(s.order, job.ID)
		}
		s.jobs[job.ID] = job
	}
}

func (s *memoryStore) Upsert(job model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(job)
}

func (s *memoryStore) upsertLocked(job model.Job) {
	if _, ok := s.jobs[job.ID]; !ok {
		s.order = append(s.order, job.ID)
	}
	s.jobs[job.ID] = job
}

func (s *memoryStore) Get(id int64) (model.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}

func (s *memoryStore) List() []model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]model.Job, 0, len(s.order))
	for _, id := range s.order {
		jobs = append(jobs, s.jobs[id])
	}
	return jobs
}

func (s *memoryStore) SetDetail(detail model.JobDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[detail.ID] = detail
	s.upsertLocked(detail.Job)
}

func (s *memoryStore) Detail(id int64) (model.JobDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	detail, ok := s.details[id]
	return detail, ok
}
