package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/fireshed/containline/barrier"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	Config string `short:"c" long:"config" env:"CONTAINLINE_CONFIG" default:"config.yaml" description:"Path to the YAML run configuration"`

	Perimeter  string `long:"perimeter" env:"CONTAINLINE_PERIMETER" description:"Override the incident perimeter GeoJSON path"`
	Rail       string `long:"rail" env:"CONTAINLINE_RAIL" description:"Override the survey rail GeoJSON path"`
	Trail      string `long:"trail" env:"CONTAINLINE_TRAIL" description:"Override the survey trail GeoJSON path"`
	Road       string `long:"road" env:"CONTAINLINE_ROAD" description:"Override the survey road GeoJSON path"`
	AgencyRoad string `long:"agency-road" env:"CONTAINLINE_AGENCY_ROAD" description:"Override the agency road GeoJSON path"`

	Buffer     float64 `long:"buffer" description:"Near-duplicate erase distance in meters (default from config)"`
	MinLength  float64 `long:"min-length" description:"Minimum surviving fragment length in meters (default from config)"`
	ScratchDir string  `long:"scratch-dir" description:"Scratch workspace directory (default from config)"`
	OutputDir  string  `long:"output-dir" description:"Output store directory (default from config)"`
	Workers    int     `long:"workers" description:"Worker count for the tiled erase (default from config)"`
	Tile       float64 `long:"tile" description:"Tile edge length in meters for the tiled erase (default from config)"`

	Broker string `long:"broker" env:"CONTAINLINE_BROKER" description:"MQTT broker URL for run events (overrides config)"`

	LogLevel string `long:"log-level" env:"CONTAINLINE_LOG_LEVEL" default:"info" description:"Log level: debug, info, warn, error"`
	Version  bool   `short:"V" long:"version" description:"Print version and exit"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(2)
	}

	if opts.Version {
		fmt.Printf("containline version: %s\n", Version)
		return
	}

	log := newLogger(opts.LogLevel)
	log.Info().Str("version", Version).Msg("Starting containment line processing")

	if err := run(opts, log); err != nil {
		log.Error().Err(err).Bytes("stack", debug.Stack()).Msg("Processing failed")
		os.Exit(1)
	}
}

func run(opts options, log zerolog.Logger) error {
	config, err := barrier.LoadConfig(opts.Config)
	if err != nil {
		return err
	}
	applyOverrides(config, opts)

	inputs, err := loadInputs(config.Inputs, log)
	if err != nil {
		return err
	}

	ws, err := barrier.OpenWorkspace(config.ScratchDir, config.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Warn().Err(err).Msg("Closing workspace")
		}
	}()

	reporter := barrier.NewLogReporter(log)
	if config.MQTT.Broker != "" {
		incident, err := barrier.IncidentName(inputs.Perimeter)
		if err != nil {
			return err
		}
		mq, err := barrier.NewMQTTReporter(config.MQTT, incident, log)
		if err != nil {
			// Run events are best-effort; the run itself proceeds.
			log.Warn().Err(err).Msg("MQTT run events disabled")
		} else {
			defer mq.Close()
			reporter = barrier.CombineReporters(reporter, mq)
		}
	}

	pipeline := barrier.NewPipeline(ws, log, reporter)

	start := time.Now()
	result, err := pipeline.Run(inputs, config.Params())
	if err != nil {
		return err
	}

	log.Info().
		Str("incident", result.Incident).
		Str("output", result.OutputPath).
		Int("features", result.Output.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Containment lines written")
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}

// applyOverrides layers CLI flags over the loaded configuration. Flags win
// when set; unset flags leave the config value alone.
func applyOverrides(config *barrier.Config, opts options) {
	if opts.Perimeter != "" {
		config.Inputs.Perimeter = opts.Perimeter
	}
	if opts.Rail != "" {
		config.Inputs.Rail = opts.Rail
	}
	if opts.Trail != "" {
		config.Inputs.Trail = opts.Trail
	}
	if opts.Road != "" {
		config.Inputs.Road = opts.Road
	}
	if opts.AgencyRoad != "" {
		config.Inputs.AgencyRoad = opts.AgencyRoad
	}
	if opts.Buffer > 0 {
		config.BufferMeters = opts.Buffer
	}
	if opts.MinLength > 0 {
		config.MinFragmentMeters = opts.MinLength
	}
	if opts.ScratchDir != "" {
		config.ScratchDir = opts.ScratchDir
	}
	if opts.OutputDir != "" {
		config.OutputDir = opts.OutputDir
	}
	if opts.Workers > 0 {
		config.Workers = opts.Workers
	}
	if opts.Tile > 0 {
		config.TileMeters = opts.Tile
	}
	if opts.Broker != "" {
		config.MQTT.Broker = opts.Broker
	}
}

// loadInputs reads the five input feature sets. Any unreadable or unparsable
// input aborts the run before processing starts.
func loadInputs(paths barrier.InputPaths, log zerolog.Logger) (barrier.Inputs, error) {
	load := func(name, path string) (*barrier.FeatureCollection, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("input %s not found: %s", name, path)
			}
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		fc, err := barrier.ParseFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s %s: %w", name, path, err)
		}
		log.Debug().Str("input", name).Str("path", path).Int("features", fc.Len()).Msg("Input loaded")
		return fc, nil
	}

	var in barrier.Inputs
	var err error
	if in.Perimeter, err = load("perimeter", paths.Perimeter); err != nil {
		return in, err
	}
	if in.SurveyRail, err = load("rail", paths.Rail); err != nil {
		return in, err
	}
	if in.SurveyTrail, err = load("trail", paths.Trail); err != nil {
		return in, err
	}
	if in.SurveyRoad, err = load("road", paths.Road); err != nil {
		return in, err
	}
	if in.AgencyRoad, err = load("agency-road", paths.AgencyRoad); err != nil {
		return in, err
	}
	return in, nil
}
