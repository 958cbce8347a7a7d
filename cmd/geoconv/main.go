package main

import (
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/convert"
	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/logger"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input      string `short:"i" long:"in"       description:"Input file path. Reads from stdin if empty"`
	Output     string `short:"o" long:"out"      description:"Output file path. Writes to stdout if empty"`
	From       string `short:"f" long:"from"     description:"Input format, sniffed from content if empty" choice:"wkt" choice:"kml" choice:"geojson" choice:"gpx" choice:"wkb" choice:"ewkb"`
	To         string `short:"t" long:"to"       description:"Output format" choice:"wkt" choice:"kml" choice:"geojson" choice:"gpx" choice:"wkb" choice:"ewkb" required:"true"`
	GPXMode    string `long:"gpx-mode"           description:"GPX element for exported points" choice:"wpt" choice:"rte" choice:"trk" default:"wpt"`
	ConfigFile string `short:"c" long:"config"   env:"CONFIG_FILE" description:"Optional configuration file for max_depth"`
	MaxDepth   int    `long:"max-depth"          env:"MAX_DEPTH" description:"Maximum nesting depth of input documents (0 = default)"`
	Hex        bool   `long:"hex"                description:"Write WKB and EWKB as hex text"`
	Document   bool   `long:"document"           description:"Wrap KML and GPX output in a full document"`
	Minify     bool   `long:"minify"             description:"Minify XML and JSON output"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	if opts.ConfigFile != "" && opts.MaxDepth == 0 {
		cfg, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		opts.MaxDepth = cfg.MaxDepth
	}

	input, err := readInput(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	from := convert.Format(opts.From)
	if from == "" {
		from, err = convert.Sniff(input)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to detect input format")
		}
		log.Debug().Str("format", string(from)).Msg("Input format detected")
	}

	c := convert.Converter{MaxDepth: opts.MaxDepth}
	geoms, err := c.Decode(from, input)
	if err != nil {
		log.Fatal().Err(err).Str("from", string(from)).Msg("Failed to decode input")
	}

	to := convert.Format(opts.To)
	out, err := c.Encode(geoms, to, convert.Options{
		GPXMode:  geo.GPXMode(opts.GPXMode),
		Hex:      opts.Hex,
		Document: opts.Document,
		Minify:   opts.Minify,
	})
	if err != nil {
		log.Fatal().Err(err).Str("to", string(to)).Msg("Failed to encode output")
	}

	if err := writeOutput(opts.Output, out); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}

	log.Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Int("roots", len(geoms)).
		Int("bytes", len(out)).
		Msg("Conversion done")
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return data, eris.Wrap(err, "read stdin")
	}

	data, err := os.ReadFile(path)
	return data, eris.Wrapf(err, "read %s", path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return eris.Wrap(err, "write stdout")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}
