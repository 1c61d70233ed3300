// Package cli implements the mealtrack command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mealtrack/internal/config"
	"mealtrack/internal/core"
	"mealtrack/internal/infra/persistence/memory"
	"mealtrack/internal/logging"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// annotationNoRepo marks commands that run without opening the repository.
const annotationNoRepo = "mealtrack/no-repo"

type app struct {
	configPath string
	dataFile   string
	driver     string
	logLevel   string
	metrics    string

	cfg      *config.Config
	logger   zerolog.Logger
	repo     *core.Repository
	svc      *core.Service
	registry *prometheus.Registry
	expvar   *core.ExpvarMetricsRecorder
}

// NewRootCmd builds the command tree. The returned close function releases
// the repository opened by the executed command.
func NewRootCmd() (*cobra.Command, func() error) {
	a := &app{logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:   "mealtrack",
		Short: "Track meals and the nutrition they add up to",
		Long: `mealtrack keeps food groups, food items, meal types, meal templates and
logged meals in a single data file and reports calories and food group
servings per day.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.report,
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", config.DefaultPath(), "config file")
	f.StringVar(&a.dataFile, "data", "", "data file, overrides the config")
	f.StringVar(&a.driver, "driver", "", "storage driver: file|sqlite|postgres|bolt|blob|memory")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")
	f.StringVar(&a.metrics, "metrics", "", "print store metrics after the command: prometheus|expvar")

	root.AddCommand(
		newInitCmd(a),
		newGroupCmd(a),
		newItemCmd(a),
		newTypeCmd(a),
		newTemplateCmd(a),
		newMealCmd(a),
		newSummaryCmd(a),
		newExportCmd(a),
		newBackupCmd(a),
	)
	return root, a.close
}

// Execute runs the command line with args.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, closeRepo := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if cerr := closeRepo(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataFile != "" {
		cfg.Storage.DataFile = a.dataFile
	}
	if a.driver != "" {
		cfg.Storage.Driver = a.driver
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	if cmd.Annotations[annotationNoRepo] != "" {
		return nil
	}

	a.registry = prometheus.NewRegistry()
	prom, err := core.NewPrometheusRecorder(a.registry)
	if err != nil {
		return err
	}
	a.expvar = core.NewExpvarMetricsRecorder("")
	repo, err := core.OpenRepository(cmd.Context(), cfg,
		core.WithRepositoryLogger(logger),
		core.WithStoreOptions(memory.WithMetrics(core.MultiRecorder{prom, a.expvar})),
	)
	if err != nil {
		return err
	}
	a.repo = repo
	a.svc = core.NewService(repo.Store, core.WithServiceLogger(logger))
	return nil
}

func (a *app) store() *memory.Store { return a.repo.Store }

func (a *app) close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

func (a *app) report(cmd *cobra.Command, _ []string) {
	w := cmd.ErrOrStderr()
	switch a.metrics {
	case "":
	case "expvar":
		if a.expvar == nil {
			return
		}
		data, err := json.MarshalIndent(a.expvar.Snapshot(), "", "  ")
		if err != nil {
			a.logger.Warn().Err(err).Msg("encode metrics")
			return
		}
		_, _ = fmt.Fprintln(w, string(data))
	case "prometheus":
		if a.registry == nil {
			return
		}
		writePrometheus(w, a.registry, a.logger)
	default:
		a.logger.Warn().Str("metrics", a.metrics).Msg("unknown metrics format")
	}
}

func writePrometheus(w io.Writer, reg *prometheus.Registry, logger zerolog.Logger) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			name := mf.GetName() + "{" + strings.Join(labels, ",") + "}"
			switch {
			case m.GetCounter() != nil:
				_, _ = fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				_, _ = fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the current settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoRepo: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force && fileExists(a.configPath) {
				return fmt.Errorf("config %s already exists, use --force to overwrite", a.configPath)
			}
			if err := a.cfg.Save(a.configPath); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
