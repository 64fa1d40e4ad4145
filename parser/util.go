package parser

import (
	"strings"

	. "github.com/ttpr0/go-coverage/util"
)

//*******************************************
// utility methods
//*******************************************

func _IsOneway(tags Dict[string, string]) bool {
	oneway := tags.Get("oneway")
	if oneway_values.ContainsKey(oneway) || reversed_values.ContainsKey(oneway) {
		return true
	}
	return tags.Get("junction") == "roundabout"
}

// Checks if any of the ";" separated values is contained in values.
func _AnyValue(value string, values Dict[string, bool]) bool {
	if value == "" {
		return false
	}
	for _, token := range strings.Split(value, ";") {
		if values.ContainsKey(strings.TrimSpace(token)) {
			return true
		}
	}
	return false
}
