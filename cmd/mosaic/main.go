// Mosaic CLI - the main entry point for hosting mosaic worlds
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/mosaic/manifest"
	"github.com/chazu/mosaic/server"
	"github.com/chazu/mosaic/snapshot"
	"github.com/chazu/mosaic/store"
	"github.com/chazu/mosaic/world"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	serveMode := flag.Bool("serve", false, "Start host server (Connect HTTP/JSON)")
	servePort := flag.Int("port", 8450, "Host server port (used with --serve)")
	ticks := flag.Int("ticks", 0, "Run the scheduler for N ticks, then exit")
	loadName := flag.String("load", "", "Restore the named snapshot at startup")
	saveName := flag.String("save", "", "Capture a snapshot under this name before exiting")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mosaic [options] [dir]\n\n")
		fmt.Fprintf(os.Stderr, "Hosts a mosaic world configured by the mosaic.toml in dir (default: .).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mosaic --ticks 100           # Run the scheduler for 100 ticks\n")
		fmt.Fprintf(os.Stderr, "  mosaic --serve --port 8080   # Serve the world on :8080\n")
		fmt.Fprintf(os.Stderr, "  mosaic --load night --serve  # Restore a snapshot, then serve\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	dir := "."
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w := world.NewWorld()
	if m != nil {
		for _, name := range m.World.Buffers {
			w.CreateBuffer(name)
		}
		if *verbose {
			fmt.Printf("Loaded worldfile for %q (%d buffers)\n", m.Project.Name, len(m.World.Buffers))
		}
	} else {
		w.CreateBuffer("main")
	}

	var st *store.Store
	if m != nil && m.SnapshotPath() != "" {
		st, err = store.Open(m.SnapshotPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	if *loadName != "" {
		w, err = loadSnapshot(st, *loadName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Restored snapshot %q (instance %s)\n", *loadName, w.InstanceID)
		}
	}

	if *serveMode {
		cfg, err := server.ConfigFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		addr := cfg.Addr
		if *servePort != 8450 {
			addr = fmt.Sprintf(":%d", *servePort)
		}
		srv := server.New(w,
			server.WithStore(st),
			server.WithHandleTTL(cfg.HandleTTL, cfg.SweepInterval),
		)
		if err := srv.ListenAndServe(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *ticks > 0 {
		rate := 30
		if m != nil {
			rate = m.World.TickRate
		}
		if err := runTicks(w, *ticks, rate, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *saveName != "" {
		if err := saveSnapshot(st, w, *saveName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Saved snapshot %q\n", *saveName)
		}
	}
}

// runTicks drives the scheduler at the configured rate.
func runTicks(w *world.World, count, rate int, verbose bool) error {
	interval := time.Second / time.Duration(rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < count; i++ {
		if err := w.Tick(); err != nil {
			return fmt.Errorf("tick %d: %w", i+1, err)
		}
		if i < count-1 {
			<-ticker.C
		}
	}
	if verbose {
		fmt.Printf("Ran %d ticks at %d/s\n", count, rate)
	}
	return nil
}

func loadSnapshot(st *store.Store, name string) (*world.World, error) {
	if st == nil {
		return nil, fmt.Errorf("no snapshot store configured (set snapshot.path in mosaic.toml)")
	}
	data, err := st.Load(name)
	if err != nil {
		return nil, err
	}
	img, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	w := world.NewWorld()
	if err := snapshot.Restore(w, img); err != nil {
		return nil, err
	}
	return w, nil
}

func saveSnapshot(st *store.Store, w *world.World, name string) error {
	if st == nil {
		return fmt.Errorf("no snapshot store configured (set snapshot.path in mosaic.toml)")
	}
	img, err := snapshot.Capture(w)
	if err != nil {
		return err
	}
	data, err := snapshot.Marshal(img)
	if err != nil {
		return err
	}
	return st.Save(name, data)
}
