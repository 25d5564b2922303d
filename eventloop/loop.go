package eventloop

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Loop is a task queue drained by a single owner goroutine.
type Loop struct {
	tasks    chan func()
	ownerGID atomic.Uint64
	started  atomic.Bool
	closed   atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a loop whose queue holds up to queueSize pending tasks.
// Post blocks once the queue is full, which keeps per-submitter ordering
// intact under backpressure.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Loop{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Start launches the owner goroutine. Calling Start twice is a no-op.
func (l *Loop) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	l.wg.Add(1)
	go l.run()
}

func (l *Loop) run() {
	defer l.wg.Done()
	l.ownerGID.Store(goroutineID())
	for {
		select {
		case task := <-l.tasks:
			task()
		case <-l.done:
			// Drain what was already queued so posted work is never
			// silently discarded on shutdown.
			for {
				select {
				case task := <-l.tasks:
					task()
				default:
					l.ownerGID.Store(0)
					return
				}
			}
		}
	}
}

// Post queues fn for execution on the owner goroutine. It returns false if
// the loop has been closed.
func (l *Loop) Post(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run executes fn on the owner goroutine and waits for it to finish. When
// called from the owner goroutine itself, fn runs inline.
func (l *Loop) Run(fn func()) bool {
	if l.OnOwner() {
		fn()
		return true
	}
	finished := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(finished)
	}) {
		return false
	}
	<-finished
	return true
}

// OnOwner reports whether the calling goroutine is the loop's owner.
func (l *Loop) OnOwner() bool {
	gid := l.ownerGID.Load()
	return gid != 0 && gid == goroutineID()
}

// Close stops the owner goroutine after draining already-queued tasks.
func (l *Loop) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}
	close(l.done)
	l.wg.Wait()
}

// goroutineID extracts the current goroutine's id from the runtime stack
// header ("goroutine 18 [running]:"). The id only ever feeds the OnOwner
// comparison; nothing else depends on it.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	s, _, _ = strings.Cut(s, " ")
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
