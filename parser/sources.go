package parser

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/rotisserie/eris"
)

//*******************************************
// osm sources
//*******************************************

// Opens a fresh scanner over the same osm data on every call.
type ScannerFunc func(ctx context.Context) (osm.Scanner, error)

type _Skipper interface {
	Skip(nodes, ways, relations bool)
}

type _FileScanner struct {
	osm.Scanner
	file *os.File
	pbf  *osmpbf.Scanner
}

func (self *_FileScanner) Skip(nodes, ways, relations bool) {
	if self.pbf == nil {
		return
	}
	self.pbf.SkipNodes = nodes
	self.pbf.SkipWays = ways
	self.pbf.SkipRelations = relations
}

func (self *_FileScanner) Close() error {
	err := self.Scanner.Close()
	if cerr := self.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func PBFSource(path string) ScannerFunc {
	return func(ctx context.Context) (osm.Scanner, error) {
		file, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "parser: failed to open %s", path)
		}
		scanner := osmpbf.New(ctx, file, runtime.GOMAXPROCS(-1))
		return &_FileScanner{Scanner: scanner, file: file, pbf: scanner}, nil
	}
}

func XMLSource(path string) ScannerFunc {
	return func(ctx context.Context) (osm.Scanner, error) {
		file, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "parser: failed to open %s", path)
		}
		return &_FileScanner{Scanner: osmxml.New(ctx, file), file: file}, nil
	}
}

// Source over in-memory osm xml.
func XMLBytesSource(data []byte) ScannerFunc {
	return func(ctx context.Context) (osm.Scanner, error) {
		return osmxml.New(ctx, bytes.NewReader(data)), nil
	}
}

// Selects the source by file extension (.pbf or .osm/.xml).
func SourceFromFile(path string) (ScannerFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pbf":
		return PBFSource(path), nil
	case ".osm", ".xml":
		return XMLSource(path), nil
	default:
		return nil, eris.Errorf("parser: unsupported osm file extension %q", ext)
	}
}
