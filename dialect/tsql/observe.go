package tsql

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/queryfront/tsql/dialect"
)

// QueryStatement runs a compiled statement against the execution
// boundary and leaves the result set in rows.
func QueryStatement(ctx context.Context, drv dialect.ExecQuerier, stmt *Statement, rows *Rows) error {
	return drv.Query(ctx, stmt.Text, stmt.Args(), rows)
}

// ExecStatement runs a compiled statement that returns no rows. v is
// either nil or a *Result.
func ExecStatement(ctx context.Context, drv dialect.ExecQuerier, stmt *Statement, v any) error {
	return drv.Exec(ctx, stmt.Text, stmt.Args(), v)
}

// Metrics accumulates statement execution counters. All counters are
// atomic; a single Metrics is shared by a driver and its transactions.
type Metrics struct {
	queries  atomic.Int64
	execs    atomic.Int64
	failures atomic.Int64
	slow     atomic.Int64
	elapsed  atomic.Int64 // nanoseconds
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Queries:  m.queries.Load(),
		Execs:    m.execs.Load(),
		Failures: m.failures.Load(),
		Slow:     m.slow.Load(),
		Elapsed:  time.Duration(m.elapsed.Load()),
	}
}

// Reset zeroes all counters.
func (m *Metrics) Reset() {
	m.queries.Store(0)
	m.execs.Store(0)
	m.failures.Store(0)
	m.slow.Store(0)
	m.elapsed.Store(0)
}

// MetricsSnapshot is a consistent view of the counters at one moment.
type MetricsSnapshot struct {
	Queries  int64
	Execs    int64
	Failures int64
	Slow     int64
	Elapsed  time.Duration
}

// Average returns the mean statement duration across queries and execs.
func (s MetricsSnapshot) Average() time.Duration {
	if n := s.Queries + s.Execs; n > 0 {
		return s.Elapsed / time.Duration(n)
	}
	return 0
}

// InstrumentedDriver wraps a dialect.Driver with metrics collection and
// structured statement logging. Statements are logged at debug level,
// slow ones at warn, failures at error.
type InstrumentedDriver struct {
	dialect.Driver
	metrics *Metrics
	log     *slog.Logger
	slow    time.Duration
}

// InstrumentOption configures an InstrumentedDriver.
type InstrumentOption func(*InstrumentedDriver)

// WithLogger routes statement logging to l instead of slog.Default.
func WithLogger(l *slog.Logger) InstrumentOption {
	return func(d *InstrumentedDriver) { d.log = l }
}

// SlowAfter marks statements that run longer than threshold as slow.
// The default is 200ms.
func SlowAfter(threshold time.Duration) InstrumentOption {
	return func(d *InstrumentedDriver) { d.slow = threshold }
}

// Instrument wraps drv with metrics and statement logging:
//
//	drv, _ := tsql.Open(dsn)
//	ins := tsql.Instrument(drv, tsql.SlowAfter(500*time.Millisecond))
//	...
//	slog.Info("db", "metrics", ins.Metrics().Snapshot())
func Instrument(drv dialect.Driver, opts ...InstrumentOption) *InstrumentedDriver {
	d := &InstrumentedDriver{
		Driver:  drv,
		metrics: &Metrics{},
		log:     slog.Default(),
		slow:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Metrics returns the shared counters of the driver and its
// transactions.
func (d *InstrumentedDriver) Metrics() *Metrics {
	return d.metrics
}

// Query runs a query through the wrapped driver and records it.
func (d *InstrumentedDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.observe(ctx, query, time.Since(start), err, &d.metrics.queries)
	return err
}

// Exec runs a statement through the wrapped driver and records it.
func (d *InstrumentedDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.observe(ctx, query, time.Since(start), err, &d.metrics.execs)
	return err
}

// Tx starts a transaction whose statements are recorded against the
// same metrics.
func (d *InstrumentedDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &instrumentedTx{Tx: tx, drv: d}, nil
}

func (d *InstrumentedDriver) observe(ctx context.Context, query string, took time.Duration, err error, counter *atomic.Int64) {
	counter.Add(1)
	d.metrics.elapsed.Add(int64(took))
	switch {
	case err != nil:
		d.metrics.failures.Add(1)
		d.log.ErrorContext(ctx, "statement failed", "err", err, "statement", query)
	case took > d.slow:
		d.metrics.slow.Add(1)
		d.log.WarnContext(ctx, "slow statement", "took", took, "statement", query)
	default:
		d.log.DebugContext(ctx, "statement", "took", took, "statement", query)
	}
}

type instrumentedTx struct {
	dialect.Tx
	drv *InstrumentedDriver
}

func (tx *instrumentedTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.drv.observe(ctx, query, time.Since(start), err, &tx.drv.metrics.queries)
	return err
}

func (tx *instrumentedTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.drv.observe(ctx, query, time.Since(start), err, &tx.drv.metrics.execs)
	return err
}

var (
	_ dialect.Driver = (*InstrumentedDriver)(nil)
	_ dialect.Tx     = (*instrumentedTx)(nil)
)
