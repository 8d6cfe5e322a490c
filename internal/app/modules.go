package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/bemgo/internal/templates"
)

// stateOrder lists module states from settled to unsettled.
var stateOrder = []string{"RESOLVED", "IN_RESOLVING", "NOT_RESOLVED"}

// writeStat prints the engine's modules grouped by state, then one line per
// template export.
func writeStat(w io.Writer, engine *templates.Engine) error {
	stat := engine.Stat()
	for _, state := range stateOrder {
		names := stat[state]
		if len(names) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", state, strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	for _, export := range engine.Exports() {
		if _, err := fmt.Fprintf(w, "template %s: %d matchers\n", export.Name, export.Matchers); err != nil {
			return err
		}
	}
	return nil
}
