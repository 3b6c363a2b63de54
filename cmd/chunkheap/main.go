// Command chunkheap drives the allocator package from the command line: a
// single-process demo driver (init/alloc/free/dump), a debug HTTP dump
// server, an fsnotify-triggered snapshot watcher, and a format-version
// compatibility check for recovery tooling. None of this is part of the
// free-chunk index itself; each subcommand is a collaborator that consumes
// the package's public Init/Alloc/Free/Display surface.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	var err error

	switch sub {
	case "help", "-h", "--help":
		usage()

		return
	case "demo":
		err = runDemo(args)
	case "serve":
		err = runServe(args)
	case "watch":
		err = runWatch(args)
	case "recover":
		err = runRecover(args)
	default:
		fmt.Fprintf(os.Stderr, "chunkheap: unknown subcommand %q\n", sub)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "chunkheap:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: chunkheap <subcommand> [flags]

subcommands:
  demo      init a region, run a scripted sequence of allocs/frees, dump it
  serve     serve a live Display() dump over debug HTTP
  watch     write timestamped snapshots on trigger-directory file events
  recover   check a dump's format version against a compatibility range`)
}
