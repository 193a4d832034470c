package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/docforge/docparse/internal/docerr"
	"github.com/docforge/docparse/internal/docx"
	"github.com/docforge/docparse/internal/engine"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		inputPath  string
		outputPath string
		imagesDir  string
		pretty     bool
		verbose    bool
	)

	flag.StringVar(&inputPath, "input", "", "Path to the input manuscript (.docx, .md or .txt)")
	flag.StringVar(&outputPath, "output", "", "Path to write the JSON document tree (default: stdout)")
	flag.StringVar(&imagesDir, "images.dir", envOr("DOCPARSE_IMAGES_DIR", docx.DefaultImagesDir), "Directory embedded images are written to")
	flag.BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if inputPath == "" && flag.NArg() > 0 {
		inputPath = flag.Arg(0)
	}
	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: docparse [-output tree.json] [-images.dir dir] input.(docx|md|txt)")
		os.Exit(2)
	}

	eng := engine.New(engine.Config{ImagesDir: imagesDir})
	doc, err := eng.Extract(inputPath)
	if err != nil {
		log.Error().Err(err).Stringer("kind", docerr.KindOf(err)).Msg("extraction failed")
		os.Exit(1)
	}

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		log.Error().Err(err).Msg("encoding document tree")
		os.Exit(1)
	}
	data = append(data, '\n')

	if outputPath == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			log.Error().Err(err).Msg("writing output")
			os.Exit(1)
		}
		return
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		log.Error().Err(err).Msg("writing output")
		os.Exit(1)
	}
	log.Info().Str("out", outputPath).Msg("wrote document tree")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
