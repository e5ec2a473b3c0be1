// Package scenario is the built-in preset registry the CLIs drive:
// each preset builds one or more wired-up membranes demonstrating one
// engine behaviour end to end. There is no rule-definition file
// format; a scenario config just names one of these presets plus a
// handful of integer knobs.
package scenario

import (
	"fmt"

	"github.com/sanketsaagar/membrane-sim/pkg/builtin"
	"github.com/sanketsaagar/membrane-sim/pkg/membrane"
	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/telemetry"
)

// Result is what a preset hands back to the runner: one or more named
// membranes (most presets have just "main"), optional send/receive
// stats to report, and an optional hook the runner invokes each time a
// membrane's Start returns Paused, before starting that membrane once
// more.
type Result struct {
	Membranes map[string]*membrane.Membrane
	Stats     *builtin.SendReceiveStats
	OnPause   func(*Result)
}

// Builder constructs a Result for one run. params carries the
// scenario-specific integer knobs a config.Config.Params map supplies;
// presets fill in defaults for any key that's absent.
type Builder func(seed int64, params map[string]int, logger telemetry.Logger) (*Result, error)

var registry = map[string]Builder{
	"create-and-stop":           buildCreateAndStop,
	"tagged-conflict":           buildTaggedConflict,
	"untagged-oversubscription": buildUntaggedOversubscription,
	"send-receive":              buildSendReceive,
	"take-ownership":            buildTakeOwnership,
	"pause-then-extend":         buildPauseThenExtend,
}

// Names returns every registered scenario name, for CLI help text.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

// Build looks up name in the registry and runs its Builder.
func Build(name string, seed int64, params map[string]int, logger telemetry.Logger) (*Result, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("scenario: unknown preset %q (known: %v)", name, Names())
	}
	if params == nil {
		params = map[string]int{}
	}
	return b(seed, params, logger)
}

func intParam(params map[string]int, key string, def int) int {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

func tagFromByte(n byte) objects.Tag {
	var t objects.Tag
	t[31] = n
	return t
}
