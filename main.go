package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/ttpr0/go-coverage/coverage"
	"github.com/ttpr0/go-coverage/hydrant"
	"github.com/ttpr0/go-coverage/output"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
	"golang.org/x/exp/slog"
)

var CONFIG Config
var MANAGER *CoverageManager

// flags overriding config keys
var _FLAG_KEYS = map[string]string{
	"osm":        "input.osm",
	"zones":      "input.zones",
	"region":     "input.region",
	"stations":   "input.stations",
	"hydrants":   "input.hydrants",
	"thresholds": "thresholds",
	"scope":      "graph.scope",
	"strategy":   "hull.strategy",
	"workers":    "run.workers",
	"timeout":    "run.station_timeout",
	"output":     "output.dir",
	"postgis":    "output.postgis.url",
	"types":      "output.write_hydrant_types",
	"log-level":  "log.level",
	"address":    "serve.address",
}

var rootCmd = &cobra.Command{
	Use:           "coverage",
	Short:         "Fire station response time coverage",
	Long:          "Computes drive-time response polygons of fire stations on the OSM road network, clipped to their response zones.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// the default env file is optional
		env_file, _ := cmd.Flags().GetString("env")
		if FileExists(env_file) || cmd.Flags().Changed("env") {
			if err := godotenv.Load(env_file); err != nil {
				return eris.Wrapf(err, "load %s", env_file)
			}
		}

		v := viper.New()
		cmd.Flags().VisitAll(func(flag *pflag.Flag) {
			if key, ok := _FLAG_KEYS[flag.Name]; ok {
				_ = v.BindPFlag(key, flag)
			}
		})
		file, _ := cmd.Flags().GetString("config")
		config, err := LoadConfig(v, file, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		CONFIG = config
		InitLogger(CONFIG.Log.Level)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute response polygons for all stations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		manager, err := NewCoverageManager(ctx, CONFIG)
		if err != nil {
			return err
		}
		stations, err := coverage.LoadStations(CONFIG.Input.Stations, CONFIG.Input.Station)
		if err != nil {
			return err
		}
		return RunCoverage(ctx, manager, stations)
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build all zone graphs and report their sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		manager, err := NewCoverageManager(ctx, CONFIG)
		if err != nil {
			return err
		}
		stats, err := PrepareZoneGraphs(ctx, manager, CONFIG.Run.Workers)
		if err != nil {
			return err
		}
		return WriteJSONToFile(stats, filepath.Join(CONFIG.Output.Dir, GRAPHS_FILE))
	},
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Zone utilities",
}

var dissolveCmd = &cobra.Command{
	Use:   "dissolve",
	Short: "Merge sub-zones sharing an id and write the dissolved zones",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		zones, err := zone.LoadZones(CONFIG.Input.Zones, CONFIG.Input.Zone)
		if err != nil {
			return err
		}
		dissolved := zone.Dissolve(zones, key)
		file, err := output.WriteZones(dissolved, CONFIG.WriterOptions())
		if err != nil {
			return err
		}
		slog.Info("dissolved zones", "zones", zones.Length(), "dissolved", dissolved.Length(), "file", file)
		return nil
	},
}

var hydrantsCmd = &cobra.Command{
	Use:   "hydrants",
	Short: "Write hydrant service buffers per flow class",
	RunE: func(cmd *cobra.Command, args []string) error {
		hydrants, err := hydrant.LoadHydrants(CONFIG.Input.Hydrants)
		if err != nil {
			return err
		}
		files, err := hydrant.WriteHydrantLayers(hydrants, CONFIG.Output.Dir, CONFIG.Hydrants, CONFIG.Output.WriteHydrantTypes)
		if err != nil {
			return err
		}
		slog.Info("wrote hydrant layers", "hydrants", hydrants.Length(), "files", files.Length())
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "config.yaml", "config file")
	flags.String("env", ".env", "environment file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("output", "", "output directory")
	flags.String("zones", "", "zone boundaries (.geojson, .shp)")

	for _, cmd := range []*cobra.Command{runCmd, prepareCmd, serveCmd} {
		cmd.Flags().String("osm", "", "osm extract (.pbf, .osm)")
		cmd.Flags().String("region", "", "region boundary (.geojson)")
		cmd.Flags().String("scope", "", "graph scope (zone, region)")
		cmd.Flags().Int("workers", 0, "number of stations processed concurrently")
		cmd.Flags().IntSlice("thresholds", nil, "response times in seconds")
		cmd.Flags().String("strategy", "", "hull strategy (convex, alpha, raster)")
	}
	runCmd.Flags().String("stations", "", "fire stations (.geojson)")
	runCmd.Flags().Duration("timeout", 0, "per station timeout")
	runCmd.Flags().String("postgis", "", "postgres url of the response polygon table")
	dissolveCmd.Flags().String("key", "", "property to dissolve by instead of the zone id")
	hydrantsCmd.Flags().String("hydrants", "", "hydrant points (.geojson)")
	hydrantsCmd.Flags().Bool("types", false, "also write hydrant locations per type")
	serveCmd.Flags().String("address", "", "listen address")

	zonesCmd.AddCommand(dissolveCmd)
	rootCmd.AddCommand(runCmd, prepareCmd, zonesCmd, hydrantsCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err.Error())
		os.Exit(1)
	}
}

//**********************************************************
// run
//**********************************************************

// Runs all stations and writes the outputs, optionally to PostGIS as well.
func RunCoverage(ctx context.Context, manager *CoverageManager, stations []coverage.Station) error {
	config := manager._GetServiceConfig()
	result, err := manager.Orchestrator().Run(ctx, stations, manager.ZoneIndex())
	if err != nil {
		return err
	}

	writer := config.WriterOptions()
	if !IsDirectoryEmpty(writer.Dir) {
		slog.Debug("overwriting outputs", "dir", writer.Dir)
	}
	files, err := output.WriteResult(result, manager.Zones(), writer)
	if err != nil {
		return err
	}
	slog.Info("wrote outputs", "files", files.Length(), "dir", writer.Dir)

	if config.Output.PostGIS.URL != "" {
		rows, err := WritePostGIS(ctx, config.Output.PostGIS, result)
		if err != nil {
			return err
		}
		slog.Info("wrote response polygons to postgis", "table", config.Output.PostGIS.Table, "rows", rows)
	}
	if config.Metrics.Textfile != "" {
		if err := manager.Collector().WriteToTextfile(config.Metrics.Textfile); err != nil {
			return err
		}
	}
	for kind, count := range _FailureCounts(result.Report) {
		slog.Warn("stations without coverage", "kind", kind.String(), "count", count)
	}
	return nil
}

func WritePostGIS(ctx context.Context, config PostGISConfig, result *coverage.Result) (int64, error) {
	pool, err := pgxpool.New(ctx, config.URL)
	if err != nil {
		return 0, eris.Wrap(err, "connect postgis")
	}
	defer pool.Close()
	sink, err := output.NewPostGISSink(pool, config.Table)
	if err != nil {
		return 0, err
	}
	if err := sink.EnsureTable(ctx); err != nil {
		return 0, err
	}
	return sink.Write(ctx, result.Report.RunID, result.Buckets)
}

func _FailureCounts(report *coverage.Report) Dict[coverage.FailureKind, int] {
	counts := NewDict[coverage.FailureKind, int](4)
	for _, outcome := range report.Stations {
		if outcome.Failure != coverage.NO_FAILURE {
			counts[outcome.Failure] += 1
		}
	}
	return counts
}
