// Package cmdline dispatches a binary's first argument to one of several
// subcommands whose flags are parsed with go-arg.
package cmdline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	arg "github.com/alexflint/go-arg"
)

// Command represents an action that can be run from the command line
type Command struct {
	Name     string
	Synopsis string
	// Args is a pointer to a go-arg struct whose field values are the defaults.
	Args Handler
}

// Handler represents a function that gets called for an action
type Handler interface {
	Handle() error
}

// Validator is the interface for custom validation of command line arguments
type Validator interface {
	Validate() error
}

func prog() string {
	if len(os.Args) > 0 {
		return filepath.Base(os.Args[0])
	}
	return "wavetext"
}

func writeUsage(w io.Writer, cmds ...Command) {
	fmt.Fprintf(w, "Usage: %s COMMAND [ARGS]\n", prog())
	fmt.Fprintf(w, "Command can be one of:\n")
	for _, cmd := range cmds {
		fmt.Fprintf(w, "  %-20s %s\n", cmd.Name, cmd.Synopsis)
	}
	fmt.Fprintf(w, "  %-20s %s\n", "help", "display this help and exit")
	fmt.Fprintf(w, "  %-20s %s\n", "help COMMAND", "display help for command and exit")
}

// Find returns the command with the given name, or nil.
func Find(name string, cmds ...Command) *Command {
	for i := range cmds {
		if cmds[i].Name == name {
			return &cmds[i]
		}
	}
	return nil
}

// Run parses args (not including the program or command name) into cmd's
// arguments, validates them and calls the handler.
func Run(cmd *Command, args []string) error {
	parser, err := arg.NewParser(arg.Config{Program: prog() + " " + cmd.Name}, cmd.Args)
	if err != nil {
		return err
	}
	if err := parser.Parse(args); err != nil {
		return err
	}
	if v, ok := cmd.Args.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return cmd.Args.Handle()
}

// MustDispatch dispatches one of the commands based on os.Args, exiting the
// process on usage errors or handler failures.
func MustDispatch(cmds ...Command) {
	if len(os.Args) < 2 {
		writeUsage(os.Stdout, cmds...)
		fmt.Println("\nError: no command provided")
		os.Exit(1)
	}

	var help bool
	action := os.Args[1]
	if action == "help" {
		if len(os.Args) < 3 {
			writeUsage(os.Stdout, cmds...)
			os.Exit(0)
		}
		help = true
		action = os.Args[2]
	}

	cmd := Find(action, cmds...)
	if cmd == nil {
		writeUsage(os.Stdout, cmds...)
		fmt.Println("\nError: unknown command", action)
		os.Exit(1)
	}

	parser, err := arg.NewParser(arg.Config{Program: prog() + " " + action}, cmd.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if err := parser.Parse(os.Args[2:]); err != nil {
		parser.Fail(err.Error())
	}

	if v, ok := cmd.Args.(Validator); ok {
		if err := v.Validate(); err != nil {
			parser.Fail(err.Error())
		}
	}

	if err := cmd.Args.Handle(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
