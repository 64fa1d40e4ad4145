package main

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/ttpr0/go-coverage/parser"
)

func IsDirectoryEmpty(path string) bool {
	files, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	return len(files) == 0
}

func GetDecoder(config Config) parser.IOSMDecoder {
	return &parser.DriveServiceDecoder{IgnoreOneway: config.Graph.IgnoreOneway}
}

// Grows the bound by padding degrees on every side.
func PadBound(bound orb.Bound, padding float64) orb.Bound {
	if padding <= 0 {
		return bound
	}
	return bound.Pad(padding)
}
