// Package registrar publishes the tracking facade once, after the management
// endpoint has had time to start.
package registrar

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/weaktrack/pkg/track"
)

// DefaultName is the well-known name the facade is published under.
const DefaultName = "weak:type=Pointer"

// DefaultDelay is how long the registrar waits before publishing when no
// readiness signal is configured. It is a timing assumption, not a handshake:
// if the endpoint is slower than this, registration fails and is not retried.
const DefaultDelay = time.Second

var (
	// ErrAlreadyStarted is returned by every Start call after the first.
	ErrAlreadyStarted = errors.New("registrar already started")
	// ErrStopped is the failure recorded when Stop runs before the facade
	// was published.
	ErrStopped = errors.New("registrar stopped before publication")
)

// State is the registrar's lifecycle position.
type State int32

const (
	Unstarted State = iota
	Waiting
	Published
	Failed
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Waiting:
		return "waiting"
	case Published:
		return "published"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Published || s == Failed
}

// Endpoint is the registration half of the management endpoint.
type Endpoint interface {
	Register(name string, bean track.ManagedBean) error
}

// Publisher makes a registered facade visible to the creation hook.
type Publisher interface {
	Publish(m *track.Managed) bool
}

// Options configures a Registrar.
type Options struct {
	Name  string
	Delay time.Duration
	// Ready, when non-nil, replaces the fixed delay: registration starts as
	// soon as the channel is closed.
	Ready    <-chan struct{}
	Config   track.Config
	Capturer track.Capturer
	Logger   *logrus.Logger
}

// Registrar runs the one-shot publication task.
type Registrar struct {
	endpoint  Endpoint
	publisher Publisher
	opts      Options
	logger    *logrus.Logger

	state     atomic.Int32
	started   atomic.Bool
	scheduler gocron.Scheduler
	stopOnce  sync.Once
	stopped   chan struct{}
	done      chan struct{}

	mu   sync.Mutex
	err  error
	bean *track.Managed
}

// New creates a registrar in the Unstarted state.
func New(endpoint Endpoint, publisher Publisher, opts Options) (*Registrar, error) {
	if endpoint == nil {
		return nil, fmt.Errorf("registrar: nil endpoint")
	}
	if publisher == nil {
		return nil, fmt.Errorf("registrar: nil publisher")
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetLevel(logrus.WarnLevel)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Registrar{
		endpoint:  endpoint,
		publisher: publisher,
		opts:      opts,
		logger:    opts.Logger,
		scheduler: s,
		stopped:   make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Start schedules the publication task. Only the first call has any effect.
func (r *Registrar) Start() error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if !r.state.CompareAndSwap(int32(Unstarted), int32(Waiting)) {
		return ErrStopped
	}

	log := r.logger.WithField("bean", r.opts.Name)
	if r.opts.Ready != nil {
		log.Debug("Waiting for management endpoint readiness")
		go func() {
			select {
			case <-r.opts.Ready:
				// A scheduling failure has already moved to Failed.
				_ = r.schedule(gocron.OneTimeJobStartImmediately())
			case <-r.stopped:
			}
			r.shutdownWhenDone()
		}()
		return nil
	}

	log.WithField("delay", r.opts.Delay).Debug("Scheduling bean registration")
	at := gocron.OneTimeJobStartImmediately()
	if r.opts.Delay > 0 {
		at = gocron.OneTimeJobStartDateTime(time.Now().Add(r.opts.Delay))
	}
	err := r.schedule(at)
	go r.shutdownWhenDone()
	return err
}

// schedule adds the one-time registration job and starts the scheduler.
func (r *Registrar) schedule(at gocron.OneTimeJobStartAtOption) error {
	_, err := r.scheduler.NewJob(
		gocron.OneTimeJob(at),
		gocron.NewTask(r.run),
		gocron.WithName("register-"+r.opts.Name),
	)
	if err != nil {
		err = fmt.Errorf("failed to schedule registration: %w", err)
		r.fail(err)
		return err
	}
	r.scheduler.Start()
	return nil
}

// run constructs the facade, registers it and publishes it to the hook.
func (r *Registrar) run() {
	if State(r.state.Load()) != Waiting {
		return
	}

	bean := track.NewManaged(r.opts.Config, r.opts.Capturer, r.logger)
	if err := r.endpoint.Register(r.opts.Name, bean); err != nil {
		r.fail(err)
		return
	}
	r.publisher.Publish(bean)

	if r.finish(Published, bean, nil) {
		r.logger.WithField("bean", r.opts.Name).Info("Weak pointer tracking published")
	}
}

// fail moves to Failed. The failure ends this task only; tracking stays off
// for the life of the process.
func (r *Registrar) fail(err error) {
	if !r.finish(Failed, nil, err) {
		return
	}
	r.logger.WithFields(logrus.Fields{
		"bean":  r.opts.Name,
		"error": err,
		"stack": string(debug.Stack()),
	}).Error("Weak pointer tracking registration failed")
}

// finish moves a non-terminal registrar to the terminal state to and closes
// done. It reports false when another transition got there first.
func (r *Registrar) finish(to State, bean *track.Managed, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if State(r.state.Load()).Terminal() {
		return false
	}
	r.bean = bean
	r.err = err
	r.state.Store(int32(to))
	close(r.done)
	return true
}

func (r *Registrar) shutdownWhenDone() {
	<-r.done
	if err := r.Stop(); err != nil {
		r.logger.WithError(err).Warn("Registrar scheduler shutdown failed")
	}
}

// Stop shuts down the scheduler. A registrar that has not published yet,
// started or not, moves to Failed with ErrStopped. It never unregisters a
// published bean.
func (r *Registrar) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.stopped)
		err = r.scheduler.Shutdown()
		if r.finish(Failed, nil, ErrStopped) {
			r.logger.WithField("bean", r.opts.Name).Info("Registrar stopped before publication")
		}
	})
	return err
}

// State returns the current lifecycle state.
func (r *Registrar) State() State {
	return State(r.state.Load())
}

// Done is closed once the registrar reaches Published or Failed, including
// a Failed reached through Stop.
func (r *Registrar) Done() <-chan struct{} {
	return r.done
}

// Err returns the registration failure, if any.
func (r *Registrar) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Bean returns the published facade, if registration succeeded.
func (r *Registrar) Bean() (*track.Managed, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bean, r.bean != nil
}
