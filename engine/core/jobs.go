package core

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
	ErrJobSystemClosed     = errors.New("job system is shut down")
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Invoked on a worker when the job starts. Required. */
	Run func() error
	/** @brief Invoked after Run succeeded. Optional. */
	OnComplete func()
	/** @brief Invoked with the error of a failed Run. Optional. */
	OnFailure func(err error)
	/** @brief Invoked last, whatever the outcome. Optional. */
	OnDone func()
}

// JobSystem runs jobs on a fixed set of worker goroutines.
type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	logger     *log.Logger

	mutex  sync.RWMutex
	closed bool
}

func NewJobSystem(numWorkers int, channelSize int, logger *log.Logger) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}
	if logger == nil {
		logger = NewNopLogger()
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		logger:     logger.WithPrefix("jobs"),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if job.OnDone != nil {
		defer job.OnDone()
	}
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.New("job panicked")
				js.logger.Error("job panicked", "panic", r)
			}
		}()
		return job.Run()
	}()
	if err != nil {
		js.logger.Error("job failed", "err", err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 */
func (js *JobSystem) Submit(job JobTask) error {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- job
	return nil
}

// Go submits fn and returns a function waiting for its result.
func (js *JobSystem) Go(fn func() error) func() error {
	done := make(chan error, 1)
	err := js.Submit(JobTask{
		Run:        fn,
		OnComplete: func() { done <- nil },
		OnFailure:  func(err error) { done <- err },
	})
	if err != nil {
		done <- err
	}
	return func() error { return <-done }
}

/**
 * @brief Shuts the job system down. Queued jobs still run.
 */
func (js *JobSystem) Shutdown() {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return
	}
	js.closed = true
	close(js.jobQueue)
	js.mutex.Unlock()
	js.wg.Wait()
}
