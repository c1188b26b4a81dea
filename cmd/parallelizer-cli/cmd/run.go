package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/distquery/parallelizer/internal/endpointcatalog"
	"github.com/distquery/parallelizer/internal/parallelizer"
	"github.com/distquery/parallelizer/internal/planmodel"
	"github.com/distquery/parallelizer/internal/queryplan"
	"github.com/distquery/parallelizer/internal/telemetry"
	"github.com/distquery/parallelizer/pkg/config"
)

var (
	fixturePath string
	catalogPath string
	withTracing bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Parallelize a fixture plan and print the emitted fragments",
	Args:  cobra.NoArgs,
	RunE:  runFixture,
}

func init() {
	runCmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "path to a JSON fixture plan (required)")
	runCmd.Flags().StringVar(&catalogPath, "catalog", "", "path to a sqlite endpoint catalog DB (defaults to a single-node fixture endpoint)")
	runCmd.Flags().BoolVar(&withTracing, "trace", false, "emit an OpenTelemetry span for the run")
	_ = runCmd.MarkFlagRequired("fixture")
	rootCmd.AddCommand(runCmd)
}

func runFixture(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	root, err := loadPlanFixture(fixturePath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	activeEndpoints, err := resolveActiveEndpoints(ctx, cfg)
	if err != nil {
		return err
	}

	params := parallelizer.Params{
		SliceTarget:                    cfg.Parallelizer.SliceTarget,
		MaxWidthPerNode:                cfg.MaxWidthPerNode(runtimeAverageCores),
		MaxGlobalWidth:                 cfg.Parallelizer.MaxGlobalWidth,
		AffinityFactor:                 cfg.Parallelizer.AffinityFactor,
		UseNewAssignmentCreator:        cfg.Parallelizer.UseNewAssignmentCreator,
		AssignmentCreatorBalanceFactor: cfg.Parallelizer.AssignmentCreatorBalanceFactor,
		FragmentCodec:                  parseCodec(cfg.Parallelizer.FragmentCodec),
	}

	var observer parallelizer.Observer
	var span *telemetry.SpanObserver
	if withTracing {
		span = telemetry.NewSpanObserver(ctx)
		observer = span
	}

	pz := parallelizer.New(activeEndpoints, params, logger, observer)

	queryID := queryplan.NewQueryID()
	req := parallelizer.Request{
		Foreman:      activeEndpoints[0],
		QueryID:      queryID,
		RootFragment: root,
		Priority:     0,
	}

	units, err := pz.GetFragments(req)
	if span != nil {
		span.End(err)
	}
	if err != nil {
		return fmt.Errorf("parallelization failed: %w", err)
	}

	return printWorkUnit(queryID, units)
}

// runtimeAverageCores is the fixed average-executor-core figure the demo
// driver assumes; a real caller would source this from cluster metrics.
const runtimeAverageCores = 4

func parseCodec(s string) planmodel.Codec {
	if s == "SNAPPY" {
		return planmodel.CodecSnappy
	}
	return planmodel.CodecNone
}

// resolveActiveEndpoints loads the active endpoint set from the endpoint
// catalog when --catalog is given, falling back to a single local fixture
// endpoint so the demo driver runs without any external database.
func resolveActiveEndpoints(ctx context.Context, cfg *config.Config) ([]planmodel.Endpoint, error) {
	if catalogPath == "" {
		return []planmodel.Endpoint{{Host: "127.0.0.1", Port: 31010}}, nil
	}

	dbCfg := &endpointcatalog.DBConfig{
		Type:     string(endpointcatalog.DBTypeSQLite),
		Database: catalogPath,
	}
	db, err := endpointcatalog.NewGormDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open endpoint catalog %s: %w", catalogPath, err)
	}

	store := endpointcatalog.NewGormStore(db)
	endpoints, err := store.ActiveEndpoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active endpoints from catalog: %w", err)
	}
	if endpoints.Len() == 0 {
		return nil, fmt.Errorf("endpoint catalog %s has no active endpoints", catalogPath)
	}
	return endpoints.Items(), nil
}

func printWorkUnit(queryID [16]byte, units planmodel.WorkUnit) error {
	fmt.Printf("query %s: %d plan fragments\n\n", queryplan.String(queryID), len(units))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, pf := range units {
		fmt.Printf("--- fragment major=%d minor=%d assigned=%s leaf=%t ---\n",
			pf.Handle.MajorID, pf.Handle.MinorID, pf.AssignedEndpoint.String(), pf.Leaf)
		summary := struct {
			Handle           planmodel.Handle
			AssignedEndpoint planmodel.Endpoint
			Leaf             bool
			Codec            string
			FragmentBytes    int
			Collectors       int
		}{
			Handle:           pf.Handle,
			AssignedEndpoint: pf.AssignedEndpoint,
			Leaf:             pf.Leaf,
			Codec:            pf.Codec.String(),
			FragmentBytes:    len(pf.FragmentBytes),
			Collectors:       len(pf.Collectors),
		}
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("failed to print fragment: %w", err)
		}
	}
	return nil
}
