// Command validate performs end-to-end integrity checks on the pothole mock
// data: the source CSV, the JSON report snapshot, and the expected heatmap
// fixture. It verifies record validity, CSV/JSON parity, the structural
// invariants of every computed heatmap, and agreement with the fixture.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/mock/pothole_reports.csv \
//	  -reports data/mock/pothole_reports.json \
//	  -expected data/mock/expected_heatmaps.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/pothole-heatmap-service/internal/adapter/reportfile"
	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
	"github.com/google/go-cmp/cmp"
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

func main() {
	csvPath := flag.String("csv", "", "path to the source pothole report CSV (optional)")
	reportsPath := flag.String("reports", "", "path to the JSON report snapshot")
	expectedPath := flag.String("expected", "", "path to the expected heatmap fixture (optional)")
	lat := flag.Float64("lat", 28.6139, "reference latitude")
	lng := flag.Float64("lng", 77.2090, "reference longitude")
	flag.Parse()

	if *reportsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *reportsPath, *expectedPath, domain.Coordinate{Lat: *lat, Lng: *lng}); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, reportsPath, expectedPath string, reference domain.Coordinate) int {
	fmt.Println("=== Pothole Data Integrity Validation ===")
	fmt.Println()

	reports, rejected, err := reportfile.Load(reportsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load report snapshot: %v\n", err)
		return 1
	}

	phases := []*phase{validateSnapshot(reports, rejected)}

	if csvPath != "" {
		rows, err := loadCSV(csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
			return 1
		}
		phases = append(phases, validateSourceParity(rows, reports))
	}

	phases = append(phases, validateHeatmapInvariants(reports, reference))

	if expectedPath != "" {
		expected, err := loadJSON[domain.HeatmapFixture](expectedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load expected heatmaps: %v\n", err)
			return 1
		}
		phases = append(phases, validateExpected(expected, reports, reference))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d valid, %d rejected\n", len(reports), len(rejected))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[strings.TrimSpace(h)] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return rows, nil
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Snapshot ──
// Every record in the snapshot must decode and validate; the loader drops
// the rest, so any rejection here means the fixture is dirty.

func validateSnapshot(reports []domain.Report, rejected []error) *phase {
	p := &phase{name: "Phase 1: Report Snapshot (records)"}

	for _, err := range rejected {
		p.errorf("%v", err)
	}
	if len(reports) == 0 {
		p.errorf("snapshot holds no valid reports")
	}
	for _, r := range reports {
		if r.ReportCount == 0 {
			p.errorf("report %s: report_count is 0 (contributes nothing)", r.ID)
		}
	}
	return p
}

// ── Phase 2: Source Parity ──
// Validates that the JSON snapshot carries exactly the CSV rows.

func validateSourceParity(rows []csvRow, reports []domain.Report) *phase {
	p := &phase{name: "Phase 2: Source Parity (CSV vs JSON)"}

	if len(rows) != len(reports) {
		p.errorf("CSV has %d rows, JSON has %d valid reports", len(rows), len(reports))
	}

	byID := make(map[string]domain.Report, len(reports))
	for _, r := range reports {
		byID[r.ID] = r
	}

	for _, row := range rows {
		id := row.fields["id"]
		r, ok := byID[id]
		if !ok {
			p.errorf("line %d: report %q not found in JSON", row.lineNum, id)
			continue
		}
		compareRow(p, row, r)
	}
	return p
}

func compareRow(p *phase, row csvRow, r domain.Report) {
	pf := func(format string, args ...any) {
		p.errorf("line %d (id %s): "+format, append([]any{row.lineNum, r.ID}, args...)...)
	}

	if lat, err := strconv.ParseFloat(row.fields["lat"], 64); err != nil || !floatEq(lat, r.Lat) {
		pf("lat: CSV=%q, JSON=%g", row.fields["lat"], r.Lat)
	}
	if lng, err := strconv.ParseFloat(row.fields["lng"], 64); err != nil || !floatEq(lng, r.Lng) {
		pf("lng: CSV=%q, JSON=%g", row.fields["lng"], r.Lng)
	}
	if row.fields["severity"] != r.Severity.String() {
		pf("severity: CSV=%q, JSON=%q", row.fields["severity"], r.Severity)
	}
	if n, err := strconv.Atoi(row.fields["report_count"]); err != nil || n != r.ReportCount {
		pf("report_count: CSV=%q, JSON=%d", row.fields["report_count"], r.ReportCount)
	}
}

// ── Phase 3: Heatmap Invariants ──
// Recomputes every radius/filter combination and checks the structural
// guarantees a consumer relies on.

func validateHeatmapInvariants(reports []domain.Report, reference domain.Coordinate) *phase {
	p := &phase{name: "Phase 3: Heatmap Invariants (computed)"}

	for _, radius := range domain.AllowedRadiiKm {
		for _, filter := range domain.SeverityFilters {
			cfg := domain.SearchConfig{RadiusKm: radius, Severity: filter}
			h := domain.Compute(reports, reference, cfg)
			checkHeatmap(p, reports, reference, cfg, h)
		}
	}
	return p
}

func checkHeatmap(p *phase, reports []domain.Report, reference domain.Coordinate, cfg domain.SearchConfig, h domain.Heatmap) {
	pf := func(format string, args ...any) {
		p.errorf("%gkm/%s: "+format, append([]any{cfg.RadiusKm, cfg.Severity}, args...)...)
	}

	if len(h.Cells) != domain.GridSize*domain.GridSize {
		pf("expected %d cells, got %d", domain.GridSize*domain.GridSize, len(h.Cells))
		return
	}
	for i, c := range h.Cells {
		if c.Row != i/domain.GridSize || c.Col != i%domain.GridSize {
			pf("cell %d is (%d,%d), not row-major", i, c.Row, c.Col)
		}
		if c.Intensity < 0 || c.Intensity > 100 {
			pf("cell %s intensity %d outside [0,100]", c.ID, c.Intensity)
		}
		if want := domain.Classify(c.Intensity); c.Band != want {
			pf("cell %s band %s, want %s for intensity %d", c.ID, c.Band, want, c.Intensity)
		}
	}

	filtered := domain.FilterReports(reports, reference, cfg)
	if h.Matched != len(filtered) {
		pf("matched %d, filter returned %d", h.Matched, len(filtered))
	}
	for _, r := range filtered {
		if d := domain.DistanceKm(reference, r.Coordinate()); d > cfg.RadiusKm {
			pf("report %s at %.4fkm is outside the radius", r.ID, d)
		}
		if !cfg.Severity.Matches(r.Severity) {
			pf("report %s severity %s passed the filter", r.ID, r.Severity)
		}
	}

	s := h.Summary
	if s.Total != h.Matched {
		pf("summary total %d != matched %d", s.Total, h.Matched)
	}
	if s.Filtered != (cfg.Severity != domain.FilterAll) {
		pf("summary filtered flag is %t", s.Filtered)
	}
	if cfg.Severity == domain.FilterAll && s.Total != s.High+s.Medium+s.Low {
		pf("summary total %d != %d+%d+%d", s.Total, s.High, s.Medium, s.Low)
	}

	again := domain.Compute(reports, reference, cfg)
	if diff := cmp.Diff(h, again); diff != "" {
		pf("recomputation differs (-first +second):\n%s", diff)
	}
}

// ── Phase 4: Expected Fixture ──
// Validates that the committed fixture still matches the computation.

func validateExpected(expected []domain.HeatmapFixture, reports []domain.Report, reference domain.Coordinate) *phase {
	p := &phase{name: "Phase 4: Expected Heatmaps (fixture)"}

	if want := len(domain.AllowedRadiiKm) * len(domain.SeverityFilters); len(expected) != want {
		p.errorf("fixture has %d heatmaps, expected %d", len(expected), want)
	}

	seen := map[domain.SearchConfig]bool{}
	for i, want := range expected {
		cfg := domain.SearchConfig{RadiusKm: want.RadiusKm, Severity: want.Severity}
		if err := cfg.Validate(); err != nil {
			p.errorf("fixture %d: %v", i, err)
			continue
		}
		if seen[cfg] {
			p.errorf("fixture %d: duplicate entry for %gkm/%s", i, cfg.RadiusKm, cfg.Severity)
			continue
		}
		seen[cfg] = true

		got := domain.NewHeatmapFixture(domain.Compute(reports, reference, cfg))
		if diff := cmp.Diff(want, got); diff != "" {
			p.errorf("%gkm/%s mismatch (-fixture +computed):\n%s", cfg.RadiusKm, cfg.Severity, diff)
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
