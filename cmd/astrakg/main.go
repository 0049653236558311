package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gowri-arun/astraq-kg/pkg/archive"
	"github.com/gowri-arun/astraq-kg/pkg/client"
	"github.com/gowri-arun/astraq-kg/pkg/ingest"
	"github.com/gowri-arun/astraq-kg/pkg/mcp"
	"github.com/gowri-arun/astraq-kg/pkg/query"
	"github.com/gowri-arun/astraq-kg/pkg/reports"
	"github.com/gowri-arun/astraq-kg/pkg/schema"
	"github.com/gowri-arun/astraq-kg/pkg/store"
)

var (
	Version   = "v1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "populate":
		err = runPopulate(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	case "queries":
		err = runQueries(os.Args[2:])
	case "node":
		err = runNode(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "report":
		err = runReport(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "version":
		fmt.Printf("astrakg %s (%s, built %s)\n", Version, Commit, BuildTime)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Usage: astrakg <command> [options]

Commands:
  populate  -db <path> -report <file> [-clear] [-archive <dir>]
                                                 Load a metadata report into the store
  query     <name> [param=value ...]             Run a canned query against the daemon
  queries                                        List canned queries
  node      <label> <id>                         Look up one node
  stats                                          Show node and edge counts
  report    <inventory|coverage> [options]       Generate a report from the local store
  mcp                                            Serve the Model Context Protocol on stdio
  version                                        Print version information

The daemon endpoint defaults to http://127.0.0.1:8091 and can be set
with ASTRAKG_ENDPOINT.`)
}

func endpoint() string {
	return os.Getenv("ASTRAKG_ENDPOINT")
}

func runPopulate(args []string) error {
	flagSet := flag.NewFlagSet("populate", flag.ExitOnError)
	dbPath := flagSet.String("db", "astrakg.db", "path to SQLite database")
	reportPath := flagSet.String("report", "", "path to the crawler metadata report")
	archiveDir := flagSet.String("archive", "", "directory to archive the raw report in (empty disables archiving)")
	clear := flagSet.Bool("clear", false, "drop existing contents before loading")
	flagSet.Parse(args)

	if *reportPath == "" {
		return fmt.Errorf("populate requires -report")
	}

	f, err := os.Open(*reportPath)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	report, err := ingest.ParseReport(f)
	if err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}

	if *archiveDir != "" {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind report: %w", err)
		}
		key, err := archive.NewReportArchive(*archiveDir).Store(context.Background(), f)
		if err != nil {
			return fmt.Errorf("failed to archive report: %w", err)
		}
		fmt.Printf("Archived report as %s\n", key)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *clear {
		if err := st.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
	}
	if err := ingest.Populate(ctx, st, report); err != nil {
		return fmt.Errorf("failed to populate store: %w", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d nodes and %d edges into %s\n", stats.TotalNodes, stats.TotalEdges, *dbPath)
	return nil
}

func runQuery(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("query requires a canned query name (see 'astrakg queries')")
	}
	name := args[0]
	params := map[string]string{}
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("parameters must be key=value, got %q", arg)
		}
		params[key] = value
	}

	c := client.NewClient(endpoint())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := c.RunNamed(ctx, name, params)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func runQueries(args []string) error {
	c := client.NewClient(endpoint())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	infos, err := c.Queries(ctx)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Printf("%s", info.Name)
		if len(info.Params) > 0 {
			fmt.Printf(" (params: %s)", strings.Join(info.Params, ", "))
		}
		fmt.Printf("\n    %s\n", info.Description)
	}
	return nil
}

func runNode(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("node requires <label> <id>")
	}

	c := client.NewClient(endpoint())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	node, err := c.GetNode(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runStats(args []string) error {
	c := client.NewClient(endpoint())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := c.GetStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Nodes: %d\n", stats.TotalNodes)
	for label, count := range stats.NodeCounts {
		fmt.Printf("  %-10s %d\n", label, count)
	}
	fmt.Printf("Edges: %d\n", stats.TotalEdges)
	for typ, count := range stats.EdgeCounts {
		fmt.Printf("  %-10s %d\n", typ, count)
	}
	return nil
}

func runReport(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("report requires a type: inventory or coverage")
	}
	reportType := reports.ReportType(args[0])

	flagSet := flag.NewFlagSet("report", flag.ExitOnError)
	dbPath := flagSet.String("db", "astrakg.db", "path to SQLite database")
	format := flagSet.String("format", "csv", "output format: csv|json")
	satellite := flagSet.String("satellite", "", "narrow the report to one satellite by name")
	flagSet.Parse(args[1:])

	st, err := store.NewStore(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	g, err := st.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	gen, err := reports.NewReportGenerator(reportType, query.NewExecutor(g, schema.Default()))
	if err != nil {
		return err
	}
	out, err := gen.Generate(ctx, reports.ReportParams{
		Format:    reports.ReportFormat(*format),
		Satellite: *satellite,
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(os.Stdout, out)
	return err
}

func runMCP(args []string) error {
	return mcp.NewServer(endpoint()).Serve()
}

func printResult(result *client.Result) {
	for _, row := range result.Rows {
		cells := make([]string, 0, len(result.Columns))
		for _, col := range result.Columns {
			switch v := row[col].(type) {
			case nil:
				cells = append(cells, "")
			case string:
				cells = append(cells, v)
			case []any:
				parts := make([]string, 0, len(v))
				for _, item := range v {
					parts = append(parts, fmt.Sprint(item))
				}
				cells = append(cells, "["+strings.Join(parts, ", ")+"]")
			default:
				cells = append(cells, fmt.Sprint(v))
			}
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	fmt.Printf("(%d rows)\n", len(result.Rows))
}
