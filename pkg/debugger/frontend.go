// Package debugger holds the registry of debugger front-ends. Every
// front-end is an interchangeable source of emulator.CommandPacket,
// talking to the core only through an emulator.Controller.
package debugger

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/thelolagemann/dmgcore/pkg/emulator"
)

// Frontend is the interface that wraps the basic methods for a
// debugger front-end.
type Frontend interface {
	// Start runs the front-end against the emulator until the
	// user quits, the emulator closes or ctx is done.
	Start(ctx context.Context, emu emulator.Controller) error
}

// FrontendOption is a front-end option. This is used to
// configure a front-end from the command line.
type FrontendOption struct {
	Name        string // name of the option
	Default     any    // default value of the option
	Value       any    // pointer to the value of the option
	Description string // description of the option
	Type        string // "int", "bool", "string"
}

// InstalledFrontend is a front-end that has been installed.
type InstalledFrontend struct {
	Name    string
	Options []FrontendOption
	Frontend
}

// InstalledFrontends is a list of all the installed front-ends.
// Front-ends should call Install in their init() function.
var InstalledFrontends []*InstalledFrontend

// Install registers a front-end with the given name.
func Install(name string, frontend Frontend, options []FrontendOption) {
	InstalledFrontends = append(InstalledFrontends, &InstalledFrontend{
		Name:     name,
		Options:  options,
		Frontend: frontend,
	})
}

// GetFrontend returns the front-end with the given name, or nil if
// no front-end with that name is installed.
func GetFrontend(name string) Frontend {
	for _, f := range InstalledFrontends {
		if f.Name == name {
			return f.Frontend
		}
	}

	return nil
}

// Names returns the names of the installed front-ends, sorted.
func Names() []string {
	names := make([]string, 0, len(InstalledFrontends))
	for _, f := range InstalledFrontends {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// RegisterFlags iterates through all the front-end options and
// registers them with fs, prefixed with the front-end name.
func RegisterFlags(fs *flag.FlagSet) {
	for _, f := range InstalledFrontends {
		for _, opt := range f.Options {
			name := fmt.Sprintf("%s-%s", f.Name, opt.Name)
			switch opt.Type {
			case "string":
				fs.StringVar(opt.Value.(*string), name, opt.Default.(string), opt.Description)
			case "bool":
				fs.BoolVar(opt.Value.(*bool), name, opt.Default.(bool), opt.Description)
			case "int":
				fs.IntVar(opt.Value.(*int), name, opt.Default.(int), opt.Description)
			default:
				panic(fmt.Sprintf("debugger: unknown option type %q for %s", opt.Type, name))
			}
		}
	}
}

// SetOption sets the value of a front-end option by its flag name,
// as used when the value comes from a configuration file.
func SetOption(fs *flag.FlagSet, frontend, option, value string) error {
	name := fmt.Sprintf("%s-%s", frontend, option)
	if fs.Lookup(name) == nil {
		return fmt.Errorf("debugger: unknown option %s", name)
	}
	return fs.Set(name, value)
}
