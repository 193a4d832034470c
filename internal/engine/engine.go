// Package engine selects the format extractor for an input file, runs it,
// and gates the result through schema validation. The engine is stateless
// across invocations and single-threaded within one: every piece of working
// state lives in the call, so independent invocations may run concurrently
// without locking.
package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/docforge/docparse/internal/block"
	"github.com/docforge/docparse/internal/docerr"
	"github.com/docforge/docparse/internal/docx"
	"github.com/docforge/docparse/internal/markdown"
	"github.com/docforge/docparse/internal/metadata"
	"github.com/docforge/docparse/internal/plaintext"
	"github.com/docforge/docparse/internal/schema"
)

// Format enumerates the supported input formats. Adding a format means
// adding a variant and an Extractor implementation, not patching a dispatch
// table.
type Format int

const (
	FormatWord Format = iota + 1
	FormatMarkdown
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatWord:
		return "docx"
	case FormatMarkdown:
		return "markdown"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// FormatForExtension maps a file extension (with leading dot, any case) to
// its format.
func FormatForExtension(ext string) (Format, bool) {
	switch strings.ToLower(ext) {
	case ".docx":
		return FormatWord, true
	case ".md", ".markdown":
		return FormatMarkdown, true
	case ".txt", ".text":
		return FormatText, true
	default:
		return 0, false
	}
}

// Extractor normalizes one manuscript into a document tree.
type Extractor interface {
	Extract(path string) (*block.Document, error)
}

// Config holds engine construction options.
type Config struct {
	// ImagesDir is where embedded images are written. Empty means the
	// conventional default.
	ImagesDir string
}

// Engine dispatches files to format extractors and validates their output.
type Engine struct {
	extractors map[Format]Extractor
}

func New(cfg Config) *Engine {
	return &Engine{extractors: map[Format]Extractor{
		FormatWord:     &docx.Extractor{ImagesDir: cfg.ImagesDir},
		FormatMarkdown: &markdown.Extractor{},
		FormatText:     &plaintext.Extractor{},
	}}
}

// Extract runs the full pipeline for one input file. Either a fully
// validated document is returned or a tagged error; partial trees are never
// returned.
func (e *Engine) Extract(path string) (*block.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, docerr.Wrap(docerr.NotFound, path, "input file not found", err)
	}

	ext := filepath.Ext(path)
	format, ok := FormatForExtension(ext)
	if !ok {
		return nil, docerr.New(docerr.NotImplemented, path, "unsupported file extension %q", ext)
	}

	log.Debug().Str("path", path).Stringer("format", format).Msg("extracting document")

	doc, err := e.extractors[format].Extract(path)
	if err != nil {
		return nil, tag(err, path)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, tag(err, path)
	}

	log.Debug().
		Str("path", path).
		Int("blocks", len(doc.Content)).
		Int("bibliography", len(doc.Bibliography)).
		Msg("extraction complete")
	return doc, nil
}

// tag maps extractor failures onto the error taxonomy and stamps the input
// path on diagnostics that lack one.
func tag(err error, path string) error {
	var missing *metadata.MissingFieldError
	if errors.As(err, &missing) {
		return docerr.Wrap(docerr.MissingField, path, "recovering document metadata", missing)
	}
	var tagged *docerr.Error
	if errors.As(err, &tagged) {
		if tagged.Path == "" {
			tagged.Path = path
		}
		return tagged
	}
	return docerr.Wrap(docerr.Parse, path, "extracting document", err)
}
