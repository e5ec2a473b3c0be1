// Package membrane ties the object store, rule store, conflict
// analyser and effect executor together into the evolve-loop state
// machine. One tick: analyse, run the parallel-safe subset, run the
// conflicting subset sequentially, then settle on Running, Paused or
// Stopped.
package membrane

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/sanketsaagar/membrane-sim/pkg/conflict"
	"github.com/sanketsaagar/membrane-sim/pkg/executor"
	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
	"github.com/sanketsaagar/membrane-sim/pkg/store"
	"github.com/sanketsaagar/membrane-sim/pkg/telemetry"
)

// Status is one of the evolve loop's lifecycle states.
type Status int

const (
	StatusNotReady Status = iota
	StatusReady
	StatusRunning
	StatusPaused
	StatusStopped
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusNotReady:
		return "NotReady"
	case StatusReady:
		return "Ready"
	case StatusRunning:
		return "Running"
	case StatusPaused:
		return "Paused"
	case StatusStopped:
		return "Stopped"
	case StatusErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

var (
	// ErrNotInitialized is returned by Evolve/Start when Init hasn't run.
	ErrNotInitialized = errors.New("membrane: not initialized")
	// ErrAlreadyInitialized is returned by Init on a membrane past NotReady.
	ErrAlreadyInitialized = errors.New("membrane: already initialized")
	// ErrNotPaused is returned by Resume on a membrane that isn't Paused.
	ErrNotPaused = errors.New("membrane: not paused")
	// ErrTerminal is returned by Evolve/Start on a Stopped or Errored membrane.
	ErrTerminal = errors.New("membrane: stopped or errored, cannot evolve")
)

// Stats is a read-only snapshot of one membrane's run so far.
type Stats struct {
	Ticks   uint64
	Created uint64
	Removed uint64
	Status  Status
}

// Membrane is one evolving region: its own object store, rule store,
// conflict analyser and effect executor, advanced one tick at a time.
type Membrane struct {
	mu sync.Mutex

	tag    objects.Tag
	status Status
	ticks  uint64

	objects  *store.ObjectStore
	rulesSt  *store.RuleStore
	analyser *conflict.Analyser
	mode     conflict.Mode
	exec     *executor.Executor
	halt     *executor.HaltFlag
	logger   telemetry.Logger
	seqRNG   *rand.Rand
}

// New creates a membrane identified by tag, in NotReady status. seed
// drives both the conflict analyser's rand_tagged sampling and the
// sequential pass's shuffle order — the same seed reproduces the same
// run.
func New(tag objects.Tag, seed int64, logger telemetry.Logger) *Membrane {
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	halt := &executor.HaltFlag{}
	objStore := store.NewObjectStore()
	return &Membrane{
		tag:      tag,
		status:   StatusNotReady,
		objects:  objStore,
		rulesSt:  store.NewRuleStore(),
		analyser: conflict.New(seed),
		halt:     halt,
		exec:     executor.NewExecutor(objStore, halt, logger),
		logger:   logger,
		seqRNG:   rand.New(rand.NewSource(seed + 1)),
	}
}

// SetMode selects which of the conflict analyser's algorithm
// skeletons this membrane's evolve loop runs each tick.
// Defaults to conflict.ModeGeneral. Callers that statically know every
// rule they will ever register is tagged-only or untagged-only can
// narrow this to conflict.ModeTaggedOnly/ModeUntaggedOnly to skip the
// irrelevant analysis phase; it is the caller's responsibility that
// the population actually matches the declared shape, since the
// analyser does not re-check it.
func (m *Membrane) SetMode(mode conflict.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
}

// Init populates the membrane's stores and transitions it to Ready. It
// may only be called once, on a NotReady membrane.
func (m *Membrane) Init(tagged []objects.Object, untagged map[objects.Type]uint64, ruleSet []*rules.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusNotReady {
		return ErrAlreadyInitialized
	}
	for _, obj := range tagged {
		m.objects.Insert(obj.ObjTag(), obj)
	}
	for t, amount := range untagged {
		m.objects.IncreaseUntagged(t, amount)
	}
	for _, r := range ruleSet {
		m.rulesSt.Insert(r.Tag, r)
	}
	m.status = StatusReady
	m.logger.Infof(telemetry.CategoryInfo, "membrane %x initialized with %d objects, %d rules", m.tag, len(tagged), len(ruleSet))
	return nil
}

// Status returns the membrane's current lifecycle status.
func (m *Membrane) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// ObjectStore exposes the membrane's object store for external
// mutation between ticks, such as host-driven object insertion.
func (m *Membrane) ObjectStore() *store.ObjectStore { return m.objects }

// RuleStore exposes the membrane's rule store for external mutation.
func (m *Membrane) RuleStore() *store.RuleStore { return m.rulesSt }

// Evolve runs exactly one tick: analyse, apply the parallel-safe
// subset, apply the conflicting subset sequentially, and settle on the
// resulting status. It is safe to call repeatedly — Start does exactly
// that until the membrane leaves Running.
func (m *Membrane) Evolve() (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.status {
	case StatusNotReady:
		return m.status, ErrNotInitialized
	case StatusStopped, StatusErrored:
		return m.status, ErrTerminal
	}

	m.status = StatusRunning
	result := m.analyser.Analyse(m.objects, m.rulesSt, m.mode)

	if len(result.Parallel) == 0 && len(result.Conflicting) == 0 {
		m.status = StatusPaused
		return m.status, nil
	}
	m.ticks++

	if len(result.Parallel) > 0 {
		if err := m.exec.RunParallel(context.Background(), result.Parallel); err != nil {
			m.status = StatusErrored
			m.logger.Errorf(telemetry.CategoryExceptions, "membrane %x: parallel pass failed: %v", m.tag, err)
			return m.status, err
		}
	}
	// The tick is atomic: the sequential pass still runs (with per-rule
	// re-verification) even when a parallel-pass rule already raised
	// the halt flag. Only the end-of-tick check below observes it.
	if len(result.Conflicting) > 0 {
		m.exec.RunSequential(result.Conflicting, m.seqRNG)
	}

	if m.halt.IsSet() {
		m.status = StatusStopped
		return m.status, nil
	}
	// A continuing tick stays Running. StatusReady is only the state
	// after Init or Resume, before the next Evolve.
	m.status = StatusRunning
	return m.status, nil
}

// Start drives Evolve repeatedly until the membrane reaches Paused,
// Stopped or Errored, or ctx is cancelled.
func (m *Membrane) Start(ctx context.Context) (Status, error) {
	for {
		select {
		case <-ctx.Done():
			return m.Status(), ctx.Err()
		default:
		}

		status, err := m.Evolve()
		if err != nil {
			return status, err
		}
		if status == StatusPaused || status == StatusStopped {
			return status, nil
		}
	}
}

// Resume moves a Paused membrane back to Ready — the hook external code
// uses after inserting new objects or rules made it applicable again.
// Evolve and Start also run on a Paused membrane without it; Resume
// makes the transition visible through Status.
func (m *Membrane) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusPaused {
		return ErrNotPaused
	}
	m.status = StatusReady
	return nil
}

// Stats returns a snapshot of the membrane's run so far.
func (m *Membrane) Stats() Stats {
	m.mu.Lock()
	ticks := m.ticks
	status := m.status
	m.mu.Unlock()

	s := m.exec.Stats()
	return Stats{Ticks: ticks, Created: s.Created, Removed: s.Removed, Status: status}
}
