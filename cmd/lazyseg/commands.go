package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyseg/internal/api"
	"github.com/rebeliceyang/lazyseg/internal/config"
	"github.com/rebeliceyang/lazyseg/internal/dataset"
	"github.com/rebeliceyang/lazyseg/internal/export"
	"github.com/rebeliceyang/lazyseg/internal/logging"
	"github.com/rebeliceyang/lazyseg/internal/models"
	"github.com/rebeliceyang/lazyseg/internal/render"
	"github.com/rebeliceyang/lazyseg/internal/segment"
	"github.com/rebeliceyang/lazyseg/internal/view"
)

type cli struct {
	cfg     *config.Config
	logger  *logging.Logger
	theme   render.Theme
	out     io.Writer
	closers []func()
}

func (a *cli) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// loader builds the configured provider, with the built-in samples as fallback
// when enabled
func (a *cli) loader(ctx context.Context) (*dataset.Loader, error) {
	samples := dataset.NewSampleProvider()

	var provider dataset.Provider
	switch a.cfg.Data.Provider {
	case config.ProviderSample:
		provider = samples
	case config.ProviderCSV:
		if a.cfg.Data.CSVDir == "" {
			return nil, fmt.Errorf("data.csv_dir must be set for the csv provider")
		}
		provider = dataset.NewCSVProvider(a.cfg.Data.CSVDir)
	case config.ProviderPostgres:
		pg, err := dataset.NewPostgresProvider(ctx, a.cfg.Postgres)
		if err != nil {
			if !a.cfg.Data.SampleTables {
				return nil, err
			}
			a.logger.Warn("postgres unavailable, using sample tables only", "error", err)
			provider = samples
		} else {
			a.closers = append(a.closers, pg.Close)
			provider = pg
		}
	default:
		return nil, fmt.Errorf("unknown data provider %q", a.cfg.Data.Provider)
	}

	if !a.cfg.Data.SampleTables {
		samples = nil
	}
	return dataset.NewLoader(provider, samples, a.cfg.Data.RowLimit, a.logger), nil
}

func (a *cli) service(src view.Source) (*segment.Service, error) {
	repo, err := segment.Open(a.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment store: %w", err)
	}
	a.closers = append(a.closers, func() { _ = repo.Close() })
	return segment.NewService(repo, src, a.logger), nil
}

func (a *cli) tables(ctx context.Context, args []string) error {
	loader, err := a.loader(ctx)
	if err != nil {
		return err
	}
	tables, err := loader.Tables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(a.out, t)
	}
	return nil
}

func (a *cli) analyze(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print column metadata and filter configs as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lazyseg analyze TABLE [--json]")
	}
	table := fs.Arg(0)

	loader, err := a.loader(ctx)
	if err != nil {
		return err
	}
	v := view.New(a.logger)
	if err := v.LoadTable(ctx, loader, table); err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"table":   table,
			"total":   v.Total(),
			"columns": v.Columns(),
			"filters": v.Configs(),
		})
	}

	fmt.Fprintf(a.out, "%s: %d rows\n\n", table, v.Total())
	fmt.Fprintln(a.out, render.Columns(v.Columns(), a.theme))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, render.Configs(v.Configs(), a.theme))
	return nil
}

func (a *cli) filter(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("filter", pflag.ContinueOnError)
	statePath := fs.String("state", "", "load a saved filter state (YAML or JSON)")
	wheres := fs.StringArrayP("where", "w", nil, `condition "FIELD OP VALUE"; lists and ranges are comma separated`)
	or := fs.Bool("or", false, "match any condition instead of all")
	limit := fs.IntP("limit", "n", 20, "rows to print")
	exportPath := fs.StringP("export", "o", "", "write matching rows to a .csv, .json or .yaml file")
	save := fs.String("save", "", "save the result as a segment with this name")
	description := fs.String("description", "", "segment description, with --save")
	printState := fs.Bool("print-state", false, "print the resulting filter state as YAML")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: lazyseg filter TABLE [flags]")
	}
	table := fs.Arg(0)

	loader, err := a.loader(ctx)
	if err != nil {
		return err
	}
	v := view.New(a.logger)
	if err := v.LoadTable(ctx, loader, table); err != nil {
		return err
	}

	if *statePath != "" {
		state, err := readState(*statePath)
		if err != nil {
			return err
		}
		if _, err := v.SetState(state); err != nil {
			return fmt.Errorf("invalid filter state in %s: %w", *statePath, err)
		}
	}
	for _, w := range *wheres {
		field, op, raw, err := parseWhere(w)
		if err != nil {
			return err
		}
		v.SetFilter(field, op, raw)
	}
	if *or {
		v.SetRootOperator(models.LogicOr)
	}

	if *printState {
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v.State()); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}

	rows := v.Rows()
	shown := rows
	if *limit >= 0 && len(shown) > *limit {
		shown = shown[:*limit]
	}
	fmt.Fprintln(a.out, render.State(v.State(), v.Count(), v.Total(), a.theme))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, render.Table{Columns: v.Dataset().Columns, Rows: shown, Total: len(rows), Theme: a.theme}.Render())

	if *exportPath != "" {
		if err := export.ExportRows(v.Dataset().Columns, rows, *exportPath); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "exported %d rows to %s\n", len(rows), *exportPath)
	}

	if *save != "" {
		svc, err := a.service(loader)
		if err != nil {
			return err
		}
		seg, err := v.Submit(ctx, svc, *save, *description)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "saved segment %s (%s), %d records\n", seg.Name, seg.ID, seg.MatchedCount)
	}
	return nil
}

func (a *cli) segments(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: lazyseg segments list|show|delete|export")
	}
	sub, args := args[0], args[1:]

	fs := pflag.NewFlagSet("segments "+sub, pflag.ContinueOnError)
	table := fs.String("table", "", "only segments of this table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loader, err := a.loader(ctx)
	if err != nil {
		return err
	}
	svc, err := a.service(loader)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		segments, err := svc.List(ctx, *table)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, render.Segments(segments, a.theme))
		return nil

	case "show":
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: lazyseg segments show ID")
		}
		seg, err := svc.Get(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (%s)\n%s\ntable: %s\n\n", seg.Name, seg.ID, seg.Description, seg.Table)
		fmt.Fprintln(a.out, render.State(seg.Filters, seg.MatchedCount, seg.MatchedCount, a.theme))
		if len(seg.Records) > 0 {
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, render.Table{Columns: models.ColumnsOf(seg.Records), Rows: seg.Records, Theme: a.theme}.Render())
		}
		return nil

	case "delete":
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: lazyseg segments delete ID")
		}
		if err := svc.Delete(ctx, fs.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted %s\n", fs.Arg(0))
		return nil

	case "export":
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: lazyseg segments export PATH [--table TABLE]")
		}
		segments, err := svc.List(ctx, *table)
		if err != nil {
			return err
		}
		if err := export.ExportSegments(segments, fs.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "exported %d segments to %s\n", len(segments), fs.Arg(0))
		return nil

	default:
		return fmt.Errorf("unknown segments command %q", sub)
	}
}

func (a *cli) serve(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	addr := fs.String("addr", a.cfg.Server.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loader, err := a.loader(ctx)
	if err != nil {
		return err
	}
	svc, err := a.service(loader)
	if err != nil {
		return err
	}
	return api.NewServer(loader, svc, a.logger).ListenAndServe(ctx, *addr)
}

// readState loads a filter state from a YAML or JSON file
func readState(path string) (models.FilterState, error) {
	var state models.FilterState
	data, err := os.ReadFile(path)
	if err != nil {
		return state, fmt.Errorf("failed to read filter state: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &state)
	default:
		err = yaml.Unmarshal(data, &state)
	}
	if err != nil {
		return state, fmt.Errorf("failed to parse filter state %s: %w", path, err)
	}
	return state, nil
}

var operators = map[models.Operator]bool{
	models.OpEqual:          true,
	models.OpNotEqual:       true,
	models.OpGreaterThan:    true,
	models.OpGreaterOrEqual: true,
	models.OpLessThan:       true,
	models.OpLessOrEqual:    true,
	models.OpBetween:        true,
	models.OpIn:             true,
	models.OpNotIn:          true,
	models.OpContains:       true,
	models.OpNotContains:    true,
}

// parseWhere splits "FIELD OP VALUE". Values are typed like CSV cells; for
// between, in and not_in the value is a comma separated list.
func parseWhere(expr string) (string, models.Operator, any, error) {
	parts := strings.Fields(expr)
	if len(parts) < 3 {
		return "", "", nil, fmt.Errorf("invalid condition %q: want FIELD OP VALUE", expr)
	}
	field, op := parts[0], models.Operator(parts[1])
	if !operators[op] {
		return "", "", nil, fmt.Errorf("invalid condition %q: unknown operator %q", expr, op)
	}
	value := strings.Join(parts[2:], " ")

	switch op {
	case models.OpBetween, models.OpIn, models.OpNotIn:
		items := strings.Split(value, ",")
		list := make([]any, 0, len(items))
		for _, item := range items {
			list = append(list, dataset.ParseCell(strings.TrimSpace(item)))
		}
		if op == models.OpBetween && len(list) != 2 {
			return "", "", nil, fmt.Errorf("invalid condition %q: between needs LOW,HIGH", expr)
		}
		return field, op, list, nil
	default:
		return field, op, dataset.ParseCell(value), nil
	}
}
