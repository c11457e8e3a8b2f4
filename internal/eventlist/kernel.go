package eventlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/features"
)

// DefaultTracefsRoots are the tracefs mount points, in lookup order.
var DefaultTracefsRoots = []string{
	"/sys/kernel/tracing",
	"/sys/kernel/debug/tracing",
}

// KernelLister prints the kernel trace events available on this host.
type KernelLister interface {
	ListKernelEvents(w io.Writer) error
}

// TracefsLister lists kernel events from tracefs available_events.
type TracefsLister struct {
	// Roots overrides DefaultTracefsRoots.
	Roots []string
}

// ListKernelEvents writes one "kernel:<group>:<event>" line per event.
func (l *TracefsLister) ListKernelEvents(w io.Writer) error {
	roots := l.Roots
	if len(roots) == 0 {
		roots = DefaultTracefsRoots
	}

	for _, root := range roots {
		f, err := os.Open(filepath.Join(root, "available_events"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("opening kernel event list: %w", err)
		}
		defer func() {
			_ = f.Close() //nolint:errcheck // Read-only file
		}()
		return copyEvents(w, f)
	}

	return fmt.Errorf("tracefs not found in %s", strings.Join(roots, ", "))
}

func copyEvents(w io.Writer, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "kernel:%s\n", line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading kernel event list: %w", err)
	}
	return nil
}

// ProbeTracepoints reports whether this process may attach tracepoint
// programs. It fails with ebpf.ErrNotSupported on kernels without them and
// with a permission error when the process lacks the privileges.
func ProbeTracepoints() error {
	return features.HaveProgramType(ebpf.TracePoint)
}
