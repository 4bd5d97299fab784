package pipeline

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"

	"seedgen/gen"
	"seedgen/sink"
)

// State is the controller's run state.
type State string

const (
	StateIdle          State = "idle"
	StateUsersRunning  State = "users_running"
	StateEventsRunning State = "events_running"
	StateOrdersRunning State = "orders_running"
	StateValidating    State = "validating"
	StateComplete      State = "complete"
	StateFailed        State = "failed"
)

// Stage names the pipeline stage a failure is attributed to.
type Stage string

const (
	StagePrepare  Stage = "prepare"
	StageUsers    Stage = "users"
	StageEvents   Stage = "events"
	StageOrders   Stage = "orders"
	StageValidate Stage = "validate"
	StageCommit   Stage = "commit"
)

// Seed offsets give each stage its own independent draw sequence, so the
// parallel stages never contend on one random source.
const (
	seedOffsetUsers  = 0
	seedOffsetEvents = 1
	seedOffsetOrders = 2
)

// Options configures one run. All volumes are required and fail fast when
// missing or non-positive.
type Options struct {
	Seed      int64
	Window    gen.TimeWindow
	BatchSize int

	Users         int
	EventsPerUser float64
	OrdersPerUser float64

	// Parallel runs the event and order stages concurrently once the user
	// stage has committed. In that mode the order generator sees no event
	// signals; sequential runs feed the full event stream into it.
	Parallel bool

	// RowsPerSecond throttles the write path; zero means unthrottled.
	RowsPerSecond int
}

func (o Options) validate() error {
	if o.Users <= 0 {
		return gen.Configurationf("user volume target must be positive, got %d", o.Users)
	}
	if o.EventsPerUser <= 0 {
		return gen.Configurationf("events-per-user multiplier must be positive, got %f", o.EventsPerUser)
	}
	if o.OrdersPerUser <= 0 {
		return gen.Configurationf("orders-per-user multiplier must be positive, got %f", o.OrdersPerUser)
	}
	if o.BatchSize <= 0 {
		return gen.Configurationf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.Window.Start.IsZero() || o.Window.End.IsZero() {
		return gen.Configurationf("time window bounds are required")
	}
	if o.Window.Start.After(o.Window.End) {
		return gen.Configurationf("time window start is after end")
	}
	return nil
}

// TableCount reports the requested, generated and durably written volumes
// for one table.
type TableCount struct {
	Requested int
	Produced  int
	Written   int
}

// RunReport is handed to the caller whether the run completed or failed:
// a failed run still reports which stage failed and how much of each table
// had been written.
type RunReport struct {
	State       State
	FailedStage Stage
	Err         error

	Users  TableCount
	Events TableCount
	Orders TableCount

	StartedAt  time.Time
	FinishedAt time.Time
}

// Controller sequences the three generators (users first, then events and
// orders), streams batches to the sink, and validates referential integrity
// before declaring the run complete.
type Controller struct {
	opts    Options
	sink    sink.Sink
	limiter ratelimit.Limiter

	mu      sync.Mutex
	state   State
	report  RunReport
	lastLog time.Time
}

func NewController(opts Options, s sink.Sink) (*Controller, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		opts:  opts,
		sink:  s,
		state: StateIdle,
	}
	if opts.RowsPerSecond > 0 {
		c.limiter = ratelimit.New(opts.RowsPerSecond, ratelimit.WithoutSlack)
	}
	return c, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateFailed {
		c.state = s
	}
}

// fail records the first failure; later ones keep the original attribution.
func (c *Controller) fail(stage Stage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateFailed {
		return
	}
	c.state = StateFailed
	c.report.FailedStage = stage
	c.report.Err = err
}

// Run executes one full pipeline run. The returned report is non-nil even
// on failure.
func (c *Controller) Run(ctx context.Context) (*RunReport, error) {
	c.report = RunReport{StartedAt: time.Now()}
	c.report.Users.Requested = c.opts.Users
	c.report.Events.Requested = int(math.Ceil(float64(c.opts.Users) * c.opts.EventsPerUser))
	c.report.Orders.Requested = int(math.Round(float64(c.opts.Users) * c.opts.OrdersPerUser))

	err := c.run(ctx)
	c.mu.Lock()
	if err == nil {
		c.state = StateComplete
	}
	c.report.State = c.state
	c.report.FinishedAt = time.Now()
	report := c.report
	c.mu.Unlock()
	return &report, err
}

func (c *Controller) run(ctx context.Context) error {
	if err := c.sink.Prepare(ctx, TableSchemas()); err != nil {
		c.fail(StagePrepare, err)
		return err
	}

	users, err := c.runUsers(ctx)
	if err != nil {
		c.fail(StageUsers, err)
		return err
	}

	var events []*gen.Event
	var orders []*gen.Order
	if c.opts.Parallel {
		// Users are durably written; the two children may now read the
		// frozen snapshot concurrently.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			evs, err := c.runEvents(gctx, users)
			if err != nil {
				c.fail(StageEvents, err)
				return err
			}
			events = evs
			return nil
		})
		g.Go(func() error {
			ords, err := c.runOrders(gctx, users, nil)
			if err != nil {
				c.fail(StageOrders, err)
				return err
			}
			orders = ords
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		// Orders consume event signals, so events go first.
		if events, err = c.runEvents(ctx, users); err != nil {
			c.fail(StageEvents, err)
			return err
		}
		if orders, err = c.runOrders(ctx, users, events); err != nil {
			c.fail(StageOrders, err)
			return err
		}
	}

	c.setState(StateValidating)
	if err := validateRun(users, events, orders); err != nil {
		c.fail(StageValidate, err)
		return err
	}
	if idx, ok := c.sink.(sink.Indexer); ok {
		if err := idx.CreateIndexes(ctx, TableSchemas()); err != nil {
			c.fail(StageValidate, err)
			return err
		}
	}
	// Buffering sinks publish only now, so a failed run never surfaces
	// partial tables.
	if cm, ok := c.sink.(sink.Committer); ok {
		if err := cm.Commit(ctx); err != nil {
			c.fail(StageCommit, err)
			return err
		}
	}
	return nil
}

func (c *Controller) runUsers(ctx context.Context) ([]*gen.User, error) {
	c.setState(StateUsersRunning)
	base, err := gen.NewBase(c.opts.Seed+seedOffsetUsers, c.opts.Window, c.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	ugen := gen.NewUserGen(base)

	users := make([]*gen.User, 0, c.opts.Users)
	nextID := int64(1)
	for len(users) < c.opts.Users {
		want := c.opts.Users - len(users)
		if want > c.opts.BatchSize {
			want = c.opts.BatchSize
		}
		batch, err := ugen.GenerateBatch(want, nextID)
		if err != nil {
			return nil, err
		}
		nextID += int64(len(batch))
		users = append(users, batch...)
		c.addProduced(&c.report.Users, len(batch))

		if err := c.writeRows(ctx, userRows(batch)); err != nil {
			return nil, err
		}
		c.addWritten(&c.report.Users, len(batch), TableUsers)
	}
	return users, nil
}

func (c *Controller) runEvents(ctx context.Context, users []*gen.User) ([]*gen.Event, error) {
	c.setState(StateEventsRunning)
	base, err := gen.NewBase(c.opts.Seed+seedOffsetEvents, c.opts.Window, c.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	egen, err := gen.NewEventGen(base, users)
	if err != nil {
		return nil, err
	}

	target := c.report.Events.Requested
	events := make([]*gen.Event, 0, target)
	nextID := int64(1)
	for len(events) < target {
		want := target - len(events)
		if want > c.opts.BatchSize {
			want = c.opts.BatchSize
		}
		// Sessions are never split, so a batch may overshoot its target.
		batch, err := egen.GenerateBatch(want, nextID)
		if err != nil {
			return nil, err
		}
		nextID += int64(len(batch))
		events = append(events, batch...)
		c.addProduced(&c.report.Events, len(batch))

		if err := c.writeRows(ctx, eventRows(batch)); err != nil {
			return nil, err
		}
		c.addWritten(&c.report.Events, len(batch), TableEvents)
	}
	return events, nil
}

func (c *Controller) runOrders(ctx context.Context, users []*gen.User, events []*gen.Event) ([]*gen.Order, error) {
	c.setState(StateOrdersRunning)
	base, err := gen.NewBase(c.opts.Seed+seedOffsetOrders, c.opts.Window, c.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	ogen, err := gen.NewOrderGen(base, users, events)
	if err != nil {
		return nil, err
	}

	target := c.report.Orders.Requested
	if target == 0 {
		return nil, nil
	}
	orders, err := ogen.GenerateBatch(target, 1)
	if err != nil {
		return nil, err
	}
	c.addProduced(&c.report.Orders, len(orders))
	if len(orders) < target {
		// Pool exhaustion is a warning, not a failure; the report keeps
		// the requested/produced gap.
		log.Printf("orders: pool exhausted, produced %d of %d requested", len(orders), target)
	}

	for start := 0; start < len(orders); start += c.opts.BatchSize {
		end := start + c.opts.BatchSize
		if end > len(orders) {
			end = len(orders)
		}
		if err := c.writeRows(ctx, orderRows(orders[start:end])); err != nil {
			return nil, err
		}
		c.addWritten(&c.report.Orders, end-start, TableOrders)
	}
	return orders, nil
}

func (c *Controller) writeRows(ctx context.Context, rows []sink.Row) error {
	if c.limiter != nil {
		for range rows {
			_ = c.limiter.Take()
		}
	}
	return c.sink.WriteBatch(ctx, rows)
}

func (c *Controller) addProduced(tc *TableCount, n int) {
	c.mu.Lock()
	tc.Produced += n
	c.mu.Unlock()
}

func (c *Controller) addWritten(tc *TableCount, n int, table string) {
	c.mu.Lock()
	tc.Written += n
	written := tc.Written
	logDue := time.Since(c.lastLog) >= 10*time.Second
	if logDue {
		c.lastLog = time.Now()
	}
	c.mu.Unlock()
	if logDue {
		log.Printf("%s: %d records written", table, written)
	}
}
