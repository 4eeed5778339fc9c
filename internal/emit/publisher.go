package emit

import (
	"sync"

	"github.com/banshee-data/scan-registration/internal/monitoring"
)

// Subscriber receives published sweep outputs.
type Subscriber func(Output)

// Publisher serializes delivery of sweep outputs to subscribers through a
// single worker goroutine, so a slow or misbehaving subscriber can never
// cause two sweeps to be delivered out of order or concurrently. This
// mirrors the buffered-channel-plus-worker pattern used to hand frames off
// to callbacks elsewhere in this codebase.
type Publisher struct {
	mu          sync.RWMutex
	subscribers []Subscriber

	outputCh chan Output
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewPublisher returns a Publisher with the given delivery buffer depth.
// A full buffer causes Publish to drop the oldest pending output rather
// than block the registration pipeline.
func NewPublisher(bufferDepth int) *Publisher {
	if bufferDepth <= 0 {
		bufferDepth = 16
	}
	p := &Publisher{
		outputCh: make(chan Output, bufferDepth),
		done:     make(chan struct{}),
	}
	p.wg.Add(1)
	go p.worker()
	return p
}

// Subscribe registers fn to receive every subsequently published Output.
func (p *Publisher) Subscribe(fn Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Publish hands out to the delivery worker. If the buffer is full, the
// oldest undelivered output is dropped to make room, and the drop is
// logged; the pipeline itself never blocks on slow subscribers.
func (p *Publisher) Publish(out Output) {
	select {
	case p.outputCh <- out:
	default:
		select {
		case dropped := <-p.outputCh:
			monitoring.Logf("emit: publisher buffer full, dropping sweep %s to publish %s", dropped.SweepID, out.SweepID)
		default:
		}
		select {
		case p.outputCh <- out:
		default:
			monitoring.Logf("emit: publisher buffer still full, dropping sweep %s", out.SweepID)
		}
	}
}

func (p *Publisher) worker() {
	defer p.wg.Done()
	for {
		select {
		case out, ok := <-p.outputCh:
			if !ok {
				return
			}
			p.deliver(out)
		case <-p.done:
			p.drain()
			return
		}
	}
}

func (p *Publisher) drain() {
	for {
		select {
		case out := <-p.outputCh:
			p.deliver(out)
		default:
			return
		}
	}
}

func (p *Publisher) deliver(out Output) {
	p.mu.RLock()
	subs := make([]Subscriber, len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.RUnlock()

	for _, fn := range subs {
		fn(out)
	}
}

// Close stops the delivery worker after flushing any buffered outputs.
func (p *Publisher) Close() {
	close(p.done)
	p.wg.Wait()
}
