// Command arcanee runs a single cartridge: `arcanee run <dir-or-.arc> [-dev] [-w N] [-h N]`.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/arcanee-engine/arcanee"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: arcanee run <cartridge-dir-or-.arc> [-dev] [-w width] [-h height]")
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		usage()
		os.Exit(2)
	}

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	dev := fs.Bool("dev", false, "enable Dev Mode (dev.* namespace, unsanitized error messages)")
	width := fs.Int("w", 1280, "window width in pixels")
	height := fs.Int("h", 720, "window height in pixels")
	stateDir := fs.String("state-dir", "", "directory for save:/ and temp:/ roots (default: OS user-state dir)")
	fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	root := fs.Arg(0)

	cfg := arcanee.DefaultRuntimeConfig()
	cfg.DevMode = *dev
	cfg.Window.Width = *width
	cfg.Window.Height = *height
	cfg.Window.Title = "ARCANEE - " + root
	if *stateDir != "" {
		cfg.Policy.StateDir = *stateDir
	} else if dir, err := os.UserCacheDir(); err == nil {
		cfg.Policy.StateDir = dir + "/arcanee"
	} else {
		cfg.Policy.StateDir = ".arcanee-state"
	}

	// In Dev Mode, running from an interactive terminal, fault/log output
	// is worth keeping readable even when the window backend has no
	// console of its own; IsTerminal gates that without assuming stdout
	// is ever a tty in CI or when launched from a GUI shell.
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if *dev && interactive {
		fmt.Fprintf(os.Stderr, "arcanee: dev mode, loading %s\n", root)
	}

	rt := arcanee.NewRuntime(cfg)
	if err := rt.Load(root); err != nil {
		fmt.Fprintln(os.Stderr, "arcanee:", err)
		os.Exit(1)
	}
	defer rt.Stop()
	rt.Run()
}
