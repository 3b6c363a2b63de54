package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chunkheap/chunkheap/internal/allocator"
)

// runWatch builds a Heap and watches a trigger directory: every file
// created inside it causes a fresh Display()+Checksum() snapshot to be
// written to a timestamped file in -out-dir. This is meant for long-running
// stress harnesses (see property_test.go's in-process equivalent) that want
// periodic heap snapshots on demand without restarting the process or
// instrumenting the harness itself.
func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	triggerDir := fs.String("trigger-dir", "", "directory to watch for trigger files (required)")
	outDir := fs.String("out-dir", ".", "directory to write snapshot files into")
	regionBytes := fs.Int("region-bytes", 1<<20, "size of the backing region in bytes")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *triggerDir == "" {
		return fmt.Errorf("-trigger-dir is required")
	}

	h := allocator.NewHeap()
	if err := h.Init(make([]byte, *regionBytes)); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(*triggerDir); err != nil {
		return fmt.Errorf("watch %s: %w", *triggerDir, err)
	}

	fmt.Printf("watching %s, writing snapshots into %s\n", *triggerDir, *outDir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create == 0 {
				continue
			}

			if err := writeSnapshot(h, *outDir); err != nil {
				fmt.Fprintln(os.Stderr, "chunkheap watch: snapshot:", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			fmt.Fprintln(os.Stderr, "chunkheap watch:", err)
		}
	}
}

func writeSnapshot(h *allocator.Heap, outDir string) error {
	name := filepath.Join(outDir, fmt.Sprintf("chunkheap-%d.snapshot", time.Now().UnixNano()))

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	h.Display(f)

	sum, err := h.Checksum()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(f, "checksum: %x\n", sum)

	return err
}
