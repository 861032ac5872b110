package workerpool

import (
	"context"
	"sync"

	"github.com/wavetext/wavetext/wave-golib/errors"
)

// Job is a unit of work run by a Pool.
type Job func() error

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	jobs   chan Job

	pending sync.WaitGroup

	m    sync.Mutex
	errs errors.Errors
}

// New returns a pool running numGo workers.
func New(numGo int) *Pool {
	return NewWithCtx(context.Background(), numGo)
}

// NewWithCtx returns a pool whose workers exit once ctx is done; jobs that
// have not started by then are dropped. Canceling ctx from inside a job
// stops the remaining jobs.
func NewWithCtx(ctx context.Context, numGo int) *Pool {
	if numGo < 1 {
		numGo = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan Job),
	}
	for i := 0; i < numGo; i++ {
		go p.work()
	}
	return p
}

// AddBlocking queues jobs, returning once every job has been picked up by a
// worker or the pool was stopped.
func (p *Pool) AddBlocking(jobs []Job) {
	p.pending.Add(len(jobs))
	p.feed(jobs)
}

// Wait blocks until every queued job has finished or been dropped, and
// returns the errors the jobs returned.
func (p *Pool) Wait() error {
	p.pending.Wait()

	p.m.Lock()
	defer p.m.Unlock()
	if p.errs == nil {
		return nil
	}
	return p.errs
}

// Stop drops unstarted jobs and shuts the workers down. Jobs already running
// are not interrupted; call Wait to wait for them.
func (p *Pool) Stop() {
	p.cancel()
}

func (p *Pool) feed(jobs []Job) {
	for i, job := range jobs {
		select {
		case p.jobs <- job:
		case <-p.ctx.Done():
			p.pending.Add(-(len(jobs) - i))
			return
		}
	}
}

func (p *Pool) work() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			p.run(job)
		}
	}
}

func (p *Pool) run(job Job) {
	defer p.pending.Done()
	if p.ctx.Err() != nil {
		return
	}
	if err := job(); err != nil {
		p.m.Lock()
		p.errs = errors.Append(p.errs, err)
		p.m.Unlock()
	}
}
