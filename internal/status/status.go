// Package status computes the per-faculty completion report: for each
// configured faculty spreadsheet and each required tab, a boolean
// filled/not-filled signal.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/facultydesk/facultydesk/internal/config"
	"github.com/facultydesk/facultydesk/internal/sheets"
)

// Record maps each required tab name to its filled/not-filled signal. Its key
// set is always exactly the required tab set - a tab that could not be read
// is recorded as false, never omitted.
type Record map[string]bool

// Report maps faculty display name to that faculty's Record.
type Report map[string]Record

// RangeReader reads a rectangular cell range from a tab of an external
// spreadsheet. Implemented by sheets.Client.
type RangeReader interface {
	Read(ctx context.Context, spreadsheetID, area string) ([][]string, error)
}

// Aggregator computes the Record for a single faculty spreadsheet.
type Aggregator struct {
	reader RangeReader
	tabs   []string
	now    func() time.Time
	log    *zap.Logger
}

func NewAggregator(reader RangeReader, tabs []string, now func() time.Time, log *zap.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Aggregator{
		reader: reader,
		tabs:   tabs,
		now:    now,
		log:    log,
	}
}

// Aggregate evaluates every required tab of a spreadsheet, in order. A failed
// read for one tab is recorded as false and does not abort the remaining
// tabs, with one exception: sheets.ErrAccessDenied means the whole
// spreadsheet is unreadable and is returned as-is.
func (a *Aggregator) Aggregate(ctx context.Context, spreadsheetID string) (Record, error) {
	record := Record{}

	for _, tab := range a.tabs {
		filled, err := a.check(ctx, spreadsheetID, tab)

		if errors.Is(err, sheets.ErrAccessDenied) {
			return nil, err
		}

		if err != nil {
			a.log.Warn("tab check failed",
				zap.String("spreadsheet", spreadsheetID),
				zap.String("tab", tab),
				zap.Error(err))
		}

		record[tab] = filled
	}

	return record, nil
}

// check reads and evaluates one tab, selecting the date rule for the 'Class
// Taken' tab and the generic has-data rule for everything else.
func (a *Aggregator) check(ctx context.Context, spreadsheetID, tab string) (bool, error) {
	if tab == config.ClassTakenTab {
		rows, err := a.reader.Read(ctx, spreadsheetID, fmt.Sprintf("%s!A:Z", tab))
		if err != nil {
			return false, err
		}

		return sheets.HasDate(rows, a.now()), nil
	}

	// A2 skips the header row
	rows, err := a.reader.Read(ctx, spreadsheetID, fmt.Sprintf("%s!A2:Z1000", tab))
	if err != nil {
		return false, err
	}

	return sheets.HasData(rows), nil
}

// Builder computes the full Report across the configured faculty directory.
type Builder struct {
	aggregator *Aggregator
	faculty    []config.Faculty
	log        *zap.Logger

	group singleflight.Group
}

func NewBuilder(aggregator *Aggregator, faculty []config.Faculty, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}

	return &Builder{
		aggregator: aggregator,
		faculty:    faculty,
		log:        log,
	}
}

// Build aggregates every configured faculty member concurrently. Per-tab
// failures have already been degraded to false by the aggregator; the only
// error that can surface here is sheets.ErrAccessDenied, which fails the
// whole report - one unshared spreadsheet blocks the dashboard rather than
// silently dropping a faculty member.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	records := make([]Record, len(b.faculty))

	g, ctx := errgroup.WithContext(ctx)

	for i, faculty := range b.faculty {
		g.Go(func() error {
			record, err := b.aggregator.Aggregate(ctx, faculty.SpreadsheetID)
			if err != nil {
				b.log.Error("faculty aggregation failed",
					zap.String("faculty", faculty.Name),
					zap.String("spreadsheet", faculty.SpreadsheetID),
					zap.Error(err))
				return err
			}

			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := Report{}
	for i, faculty := range b.faculty {
		report[faculty.Name] = records[i]
	}

	return report, nil
}

// BuildShared is Build behind a singleflight gate: overlapping polls (the
// dashboard refreshes every five minutes and on demand) share a single
// in-flight computation instead of issuing duplicate reads against the
// external store.
func (b *Builder) BuildShared(ctx context.Context) (Report, error) {
	v, err, _ := b.group.Do("report", func() (any, error) {
		return b.Build(ctx)
	})

	if err != nil {
		return nil, err
	}

	return v.(Report), nil
}
