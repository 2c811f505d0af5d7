// Package dataset turns a recap file into the canonical record set and holds
// the set currently being served.
package dataset

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/rekap/engine"
	"github.com/spektr-org/rekap/schema"
	"github.com/spektr-org/rekap/tabular"
)

// ============================================================================
// DATASET — One load of a recap file
// ============================================================================
// Pipeline: read → resolve columns → profile → normalize.
// A Dataset is immutable once built; a new load builds a new Dataset.
// ============================================================================

// Dataset is the canonical record set of one load.
// The records are only reachable through Records, which copies them.
type Dataset struct {
	ID       uuid.UUID              `json:"id"`
	Source   string                 `json:"source"`
	LoadedAt time.Time              `json:"loadedAt"`
	Table    *tabular.RawTable      `json:"-"`
	Headers  []string               `json:"headers"`
	Roles    schema.ColumnRoleMap   `json:"roles"`
	Profiles []schema.ColumnProfile `json:"profiles"`
	Rows     int                    `json:"rows"`

	records []engine.Record
}

// Records returns a copy of the canonical records. Callers may reorder or
// modify the copy without affecting other readers.
func (d *Dataset) Records() []engine.Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Option configures a load.
type Option func(*loader)

type loader struct {
	logger     *slog.Logger
	sheet      string
	rules      []schema.Rule
	engineOpts []engine.Option
	now        func() time.Time
}

// WithLogger routes load logs to logger. The engine logs to it as well.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithSheet selects a workbook sheet by name. Ignored for text files.
func WithSheet(sheet string) Option {
	return func(l *loader) { l.sheet = sheet }
}

// WithRules replaces schema.DefaultRules for column resolution.
func WithRules(rules []schema.Rule) Option {
	return func(l *loader) { l.rules = rules }
}

// WithEngineOptions passes options through to engine.Normalize.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(l *loader) { l.engineOpts = append(l.engineOpts, opts...) }
}

func newLoader(opts []Option) *loader {
	l := &loader{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		rules:  schema.DefaultRules(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ============================================================================
// ENTRY POINTS
// ============================================================================

// Load reads the recap file at path.
func Load(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	l := newLoader(opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := tabular.ReadFile(path, l.sheet)
	if err != nil {
		l.logger.Error("read failed", "source", path, "error", err)
		return nil, err
	}
	return l.build(ctx, path, table)
}

// LoadReader reads a recap file from r. name picks the format by extension.
func LoadReader(ctx context.Context, name string, r io.Reader, opts ...Option) (*Dataset, error) {
	l := newLoader(opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := tabular.Read(name, r, l.sheet)
	if err != nil {
		l.logger.Error("read failed", "source", name, "error", err)
		return nil, err
	}
	return l.build(ctx, name, table)
}

// FromTable builds a Dataset from an already parsed table.
func FromTable(source string, table *tabular.RawTable, opts ...Option) (*Dataset, error) {
	return newLoader(opts).build(context.Background(), source, table)
}

func (l *loader) build(ctx context.Context, source string, table *tabular.RawTable) (*Dataset, error) {
	if table == nil || !table.HasHeaders() {
		return nil, &tabular.EmptyDatasetError{Source: source, Reason: "no header row"}
	}
	l.logger.Info("read table", "source", source, "columns", len(table.Headers), "rows", table.Len())

	roles := schema.NewResolver(l.rules).Resolve(table.Headers)
	l.logger.Info("resolved columns",
		"source", source,
		"resolved", len(roles.Matches()),
		"unresolved", roles.Unresolved(),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engineOpts := append([]engine.Option{engine.WithLogger(l.logger)}, l.engineOpts...)
	records := engine.Normalize(table, roles, engineOpts...)
	if len(records) == 0 {
		return nil, &tabular.EmptyDatasetError{Source: source, Reason: "no rows with a customer or salesperson"}
	}

	ds := &Dataset{
		ID:       uuid.New(),
		Source:   source,
		LoadedAt: l.now().UTC(),
		Table:    table,
		Headers:  table.Headers,
		Roles:    roles,
		Profiles: schema.ProfileColumns(table, roles),
		Rows:     table.Len(),
		records:  records,
	}
	l.logger.Info("dataset loaded", "id", ds.ID, "source", source, "records", len(records))
	return ds, nil
}
