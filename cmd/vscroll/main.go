package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HamStudy/vscroll/internal/ui"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// CLIFlags holds all command-line flags
type CLIFlags struct {
	count     int
	multiline int
	seed      int64

	version bool
	help    bool
	verbose bool
}

func parseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.IntVar(&flags.count, "count", 10000, "Number of demo rows to generate")
	flag.IntVar(&flags.multiline, "multiline", 10, "Percentage of rows given extra detail lines (0-100)")
	flag.Int64Var(&flags.seed, "seed", 1, "Seed for the demo row generator")

	flag.BoolVar(&flags.version, "version", false, "Print version information and quit")
	flag.BoolVar(&flags.version, "v", false, "Shorthand for --version")
	flag.BoolVar(&flags.help, "help", false, "Show help message")
	flag.BoolVar(&flags.help, "h", false, "Shorthand for --help")
	flag.BoolVar(&flags.verbose, "verbose", false, "Log per-cycle viewport diagnostics to stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vscroll - virtual scrolling engine demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  vscroll [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Keys:\n")
		fmt.Fprintf(os.Stderr, "  ↑/↓, j/k, wheel   - scroll\n")
		fmt.Fprintf(os.Stderr, "  pgup/pgdn, b/f    - page\n")
		fmt.Fprintf(os.Stderr, "  g / G             - jump to top / bottom\n")
		fmt.Fprintf(os.Stderr, "  s                 - smooth scroll to the far end\n")
		fmt.Fprintf(os.Stderr, "  q                 - quit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return flags
}

// generateItems builds demo rows: mostly single lines, a configurable share
// with extra detail lines so measurement has real work to do.
func generateItems(flags *CLIFlags) []string {
	rng := rand.New(rand.NewSource(flags.seed))
	items := make([]string, flags.count)
	for i := range items {
		var b strings.Builder
		fmt.Fprintf(&b, "%6d  entry-%04x", i, rng.Intn(1<<16))
		if rng.Intn(100) < flags.multiline {
			for j := 0; j < 1+rng.Intn(3); j++ {
				fmt.Fprintf(&b, "\n        detail %d: %x", j, rng.Int63())
			}
		}
		items[i] = b.String()
	}
	return items
}

func main() {
	flags := parseFlags()

	if flags.help {
		flag.Usage()
		os.Exit(0)
	}
	if flags.version {
		fmt.Printf("vscroll %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		os.Exit(0)
	}
	if flags.count < 0 {
		fmt.Fprintln(os.Stderr, "Error: -count must be non-negative")
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	model, err := ui.NewModel(generateItems(flags), flags.verbose)
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Fatalf("Error running program: %v", err)
	}
}
