package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chunkheap/chunkheap/internal/allocator"
)

// runRecover reads a snapshot file written by runWatch or runServe, extracts
// its "chunkheap dump (format vX.Y.Z)" header line, and checks that version
// against a semver constraint before declaring the snapshot safe to walk.
// This is the compatibility gate a standalone recovery tool would run
// before attaching to a region read-only and trusting its physical chunk
// chain, per spec.md §6's note that the dump format is "useful for
// recovery tools built against a different chunkheap version."
func runRecover(args []string) error {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	file := fs.String("file", "", "dump snapshot file to check (required)")
	constraint := fs.String("constraint", "^"+allocator.CurrentFormatVersion(), "semver constraint the dump's format version must satisfy")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	version, err := readFormatVersion(*file)
	if err != nil {
		return err
	}

	ok, err := allocator.CompatibleWith(version, *constraint)
	if err != nil {
		return fmt.Errorf("constraint check: %w", err)
	}

	if !ok {
		return fmt.Errorf("dump format %s does not satisfy constraint %s, refusing to walk it", version, *constraint)
	}

	fmt.Printf("dump format %s satisfies %s, safe to walk\n", version, *constraint)

	return nil
}

func readFormatVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "chunkheap dump (format ") {
			continue
		}

		version := strings.TrimPrefix(line, "chunkheap dump (format ")
		version = strings.TrimSuffix(version, ")")

		return version, nil
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan %s: %w", path, err)
	}

	return "", fmt.Errorf("%s: no dump format header line found", path)
}
