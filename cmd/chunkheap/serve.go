package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/singleflight"

	"github.com/chunkheap/chunkheap/internal/allocator"
)

// runServe builds a Heap over one freshly initialized region (it makes no
// allocations of its own) and serves its Display()
// dump over cleartext HTTP/2 (h2c) on every request to /dump. A burst of
// concurrent refreshes of the debug page collapses into a single dump pass
// via singleflight, the same way buildHTTPMux's registry handlers in the
// teacher's package manager collapse concurrent reads behind one fetch.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":9322", "listen address")
	regionBytes := fs.Int("region-bytes", 1<<20, "size of the backing region in bytes")

	if err := fs.Parse(args); err != nil {
		return err
	}

	h := allocator.NewHeap()
	if err := h.Init(make([]byte, *regionBytes)); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	var group singleflight.Group

	mux := http.NewServeMux()
	mux.HandleFunc("/dump", func(w http.ResponseWriter, r *http.Request) {
		v, err, _ := group.Do("dump", func() (interface{}, error) {
			var buf strings.Builder

			h.Display(&buf)

			sum, err := h.Checksum()
			if err != nil {
				return nil, err
			}

			fmt.Fprintf(&buf, "checksum: %x\n", sum)

			return buf.String(), nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, v.(string))
	})

	h2s := &http2.Server{}
	server := &http.Server{
		Addr:              *addr,
		Handler:           h2c.NewHandler(mux, h2s),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	fmt.Printf("serving dump on http://%s/dump\n", *addr)

	return server.Serve(ln)
}
