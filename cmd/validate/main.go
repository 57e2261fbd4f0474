// Command validate runs captured Aare.guru "current" payloads through the same
// normalizer and projector the monitor uses, and reports which display fields
// each payload leaves empty.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -require water_temperature,flow \
//	  -decoration emoji \
//	  captures/*.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/aareguru-monitor/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// payload is one decoded capture.
type payload struct {
	path  string
	snap  domain.Snapshot
	state domain.DisplayState
}

func main() {
	require := flag.String("require", "", "comma-separated field ids that must not be "+domain.NoData)
	decoration := flag.String("decoration", "plain", "display decoration: plain or emoji")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, flag.Args(), parseFieldList(*require), *decoration); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, paths []string, required []domain.FieldID, decoration string) int {
	// Fixed clock so last_updated is reproducible across runs.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.July, 14, 12, 0, 0, 0, time.Local)))
	defer domain.SetClock(nil)

	fmt.Fprintln(w, "=== Aare.guru Payload Validation ===")
	fmt.Fprintln(w)

	projector := domain.NewProjector(domain.NewDecorator(decoration))
	decoded, decodePhase := decodeAll(paths, projector)

	phases := []*phase{
		decodePhase,
		validateProjection(decoded),
		validateRequired(decoded, required),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Payloads: %d given, %d decoded\n", len(paths), len(decoded))

	for _, d := range decoded {
		if absent := absentFields(d.state); len(absent) > 0 {
			fmt.Fprintf(w, "  %s: absent %s\n", filepath.Base(d.path), joinFields(absent))
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Decoding ──

func decodeAll(paths []string, projector *domain.Projector) ([]payload, *phase) {
	p := &phase{name: "Phase 1: Decoding (JSON payloads)"}
	var out []payload
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			p.errorf("%s: %v", path, err)
			continue
		}
		snap, err := domain.ParsePayload(data)
		if err != nil {
			p.errorf("%s: %v", filepath.Base(path), err)
			continue
		}
		out = append(out, payload{
			path:  path,
			snap:  snap,
			state: projector.Project(snap, nil, domain.AllVisible()),
		})
	}
	return out, p
}

// ── Phase 2: Projection ──
// Every field of every section is present and non-empty.

func validateProjection(decoded []payload) *phase {
	p := &phase{name: "Phase 2: Projection (field completeness)"}
	for _, d := range decoded {
		name := filepath.Base(d.path)
		for _, f := range allFields() {
			v, ok := d.state[f]
			switch {
			case !ok:
				p.errorf("%s: field %s missing from display state", name, f)
			case strings.TrimSpace(v) == "":
				p.errorf("%s: field %s is blank", name, f)
			}
		}
		if got := d.state[domain.FieldStatus]; got != domain.StatusOK {
			p.errorf("%s: status %q, want %q", name, got, domain.StatusOK)
		}
		if d.snap.WaterTemperatureC == nil && d.state[domain.FieldPanel] != domain.NoData {
			p.errorf("%s: panel %q without a water temperature", name, d.state[domain.FieldPanel])
		}
	}
	return p
}

// ── Phase 3: Required fields ──

func validateRequired(decoded []payload, required []domain.FieldID) *phase {
	p := &phase{name: "Phase 3: Required fields"}
	known := allFields()
	for _, f := range required {
		if !slices.Contains(known, f) {
			p.errorf("unknown field id %q", f)
		}
	}
	for _, d := range decoded {
		for _, f := range required {
			if d.state[f] == domain.NoData {
				p.errorf("%s: required field %s is absent", filepath.Base(d.path), f)
			}
		}
	}
	return p
}

// ── Helpers ──

func allFields() []domain.FieldID {
	fields := slices.Clone(domain.CoreFields)
	for _, sec := range domain.AllSections {
		fields = append(fields, domain.SectionFields[sec]...)
	}
	return fields
}

func absentFields(state domain.DisplayState) []domain.FieldID {
	var out []domain.FieldID
	for _, f := range state.Keys() {
		if state[f] == domain.NoData {
			out = append(out, f)
		}
	}
	return out
}

func parseFieldList(s string) []domain.FieldID {
	var out []domain.FieldID
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, domain.FieldID(part))
		}
	}
	return out
}

func joinFields(fields []domain.FieldID) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}
