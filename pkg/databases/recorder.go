package databases

import (
	"context"

	"github.com/golang/glog"
	"github.com/tosih/rpm-simulator/pkg/clock"
	"github.com/tosih/rpm-simulator/pkg/store"
)

// Recorder queues simulator states and writes them to a Database in the background.
type Recorder struct {
	db    Database
	clock clock.Clock
	in    chan Sample
}

func NewRecorder(db Database, clk clock.Clock, buffer int) *Recorder {
	return &Recorder{
		db:    db,
		clock: clk,
		in:    make(chan Sample, buffer),
	}
}

// Record queues s without blocking. When the queue is full the sample is dropped.
func (r *Recorder) Record(s store.State) {
	select {
	case r.in <- NewSample(s, r.clock.Now()):
	default:
		glog.Warning("Recorder queue full, dropping sample")
	}
}

// Run writes queued samples until ctx is done, then drains what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case sample := <-r.in:
			r.insert(ctx, sample)
		case <-ctx.Done():
			r.drain()
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case sample := <-r.in:
			r.insert(context.Background(), sample)
		default:
			return
		}
	}
}

func (r *Recorder) insert(ctx context.Context, sample Sample) {
	if err := r.db.Insert(ctx, sample); err != nil {
		glog.Errorf("Cannot record sample: %s", err)
	}
}
