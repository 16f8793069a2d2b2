package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueLowStock = "jobs:low_stock"

	JobTypeLowStock = "low_stock"

	defaultMaxAttempts = 3
	popTimeout         = 5 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes the payload of one job type. A returned error makes the
// pool retry the job, and after the last attempt move it to the DLQ.
type Handler interface {
	Handle(ctx context.Context, payload json.RawMessage) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

func (f HandlerFunc) Handle(ctx context.Context, payload json.RawMessage) error {
	return f(ctx, payload)
}

// Dispatcher enqueues async jobs into Redis lists; the pool dequeues them
// with BRPOP. A nil Dispatcher or one without a client drops jobs silently.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueLowStock pushes one alert job carrying every given alert.
func (d *Dispatcher) EnqueueLowStock(ctx context.Context, alerts ...LowStockAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	return d.enqueue(ctx, QueueLowStock, JobTypeLowStock, LowStockPayload{Alerts: alerts})
}

// EnqueueLowStockDigest pushes the periodic sweep result as a single job.
func (d *Dispatcher) EnqueueLowStockDigest(ctx context.Context, alerts []LowStockAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	return d.enqueue(ctx, QueueLowStock, JobTypeLowStock, LowStockPayload{Alerts: alerts, Digest: true})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return nil
	}
	encoded, err := encodeJob(jobType, payload, 0)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}, attempts int) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data, Attempts: attempts})
}

// Pool runs N goroutines consuming the registered queues.
type Pool struct {
	rdb         *redis.Client
	size        int
	maxAttempts int
	handlers    map[string]Handler
	queues      []string
	wg          sync.WaitGroup

	// push is LPUSH on rdb; replaced in tests.
	push func(ctx context.Context, key string, value []byte) error
}

func NewPool(rdb *redis.Client, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		rdb:         rdb,
		size:        size,
		maxAttempts: defaultMaxAttempts,
		handlers:    make(map[string]Handler),
	}
	p.push = func(ctx context.Context, key string, value []byte) error {
		return rdb.LPush(ctx, key, value).Err()
	}
	return p
}

// Register binds a job type to its handler and subscribes to queue.
func (p *Pool) Register(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches the workers. Each blocks on BRPOP, so idle workers cost no CPU.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", p.size).Strs("queues", p.queues).Msg("worker pool started")
}

// Wait blocks until every worker has returned after ctx cancellation.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		result, err := p.rdb.BRPop(ctx, popTimeout, p.queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

// process runs one raw job. Failed jobs are pushed back with an incremented
// attempt count until maxAttempts, then dead-lettered.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: invalid job envelope")
		p.deadLetter(ctx, queue, Job{Payload: json.RawMessage(`null`)}, "invalid envelope: "+err.Error())
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		p.deadLetter(ctx, queue, job, "no handler for job type")
		return
	}

	err := h.Handle(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("queue", queue).Str("type", job.Type).Msg("job processed")
		return
	}

	job.Attempts++
	if job.Attempts >= p.maxAttempts {
		p.deadLetter(ctx, queue, job, err.Error())
		return
	}
	log.Warn().Err(err).Str("queue", queue).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		p.deadLetter(ctx, queue, job, mErr.Error())
		return
	}
	if pErr := p.push(ctx, queue, encoded); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("worker: requeue failed")
	}
}
