// Command genmock reads the pothole report CSV and generates the mock data
// fixtures used by the test suites: the JSON report snapshot the service
// loads, and the expected heatmaps for every radius and severity filter
// around the default reference location. It runs the real domain package so
// the fixtures match what the service computes.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/pothole_reports.csv \
//	  -reports-out data/mock/pothole_reports.json \
//	  -heatmaps-out data/mock/expected_heatmaps.json
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/pothole-heatmap-service/internal/adapter/reportfile"
	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "pothole report CSV (id,lat,lng,severity,report_count)")
	reportsOut := flag.String("reports-out", "", "output path for the JSON report snapshot")
	heatmapsOut := flag.String("heatmaps-out", "", "output path for the expected heatmap fixture")
	lat := flag.Float64("lat", 28.6139, "reference latitude for expected heatmaps")
	lng := flag.Float64("lng", 77.2090, "reference longitude for expected heatmaps")
	flag.Parse()

	if *csvPath == "" || *reportsOut == "" || *heatmapsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -reports-out, -heatmaps-out")
	}

	reports, err := processCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("read %d reports", len(reports))

	if err := writeJSON(*reportsOut, reports); err != nil {
		return fmt.Errorf("writing report snapshot: %w", err)
	}
	log.Printf("wrote report snapshot: %s", *reportsOut)

	// Reload through the service's decoder so the fixtures see exactly what
	// the running service would.
	loaded, rejected, err := reportfile.Load(*reportsOut)
	if err != nil {
		return fmt.Errorf("reloading report snapshot: %w", err)
	}
	if len(rejected) > 0 {
		return fmt.Errorf("reloading report snapshot: %d records rejected: %v", len(rejected), rejected[0])
	}

	reference := domain.Coordinate{Lat: *lat, Lng: *lng}
	fixtures := make([]domain.HeatmapFixture, 0, len(domain.AllowedRadiiKm)*len(domain.SeverityFilters))
	for _, radius := range domain.AllowedRadiiKm {
		for _, filter := range domain.SeverityFilters {
			h := domain.Compute(loaded, reference, domain.SearchConfig{RadiusKm: radius, Severity: filter})
			fixtures = append(fixtures, domain.NewHeatmapFixture(h))
		}
	}

	if err := writeFixtures(*heatmapsOut, fixtures); err != nil {
		return fmt.Errorf("writing heatmap fixture: %w", err)
	}
	log.Printf("wrote heatmap fixture: %s (%d heatmaps)", *heatmapsOut, len(fixtures))

	printStats(loaded, reference, fixtures)
	return nil
}

func processCSV(path string) ([]domain.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}

	reports := make([]domain.Report, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		r, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func parseRow(row []string, colIdx map[string]int) (domain.Report, error) {
	lat, err := strconv.ParseFloat(get(row, colIdx, "lat"), 64)
	if err != nil {
		return domain.Report{}, fmt.Errorf("lat: %w", err)
	}
	lng, err := strconv.ParseFloat(get(row, colIdx, "lng"), 64)
	if err != nil {
		return domain.Report{}, fmt.Errorf("lng: %w", err)
	}
	severity, err := domain.ParseSeverity(get(row, colIdx, "severity"))
	if err != nil {
		return domain.Report{}, err
	}
	count, err := strconv.Atoi(get(row, colIdx, "report_count"))
	if err != nil {
		return domain.Report{}, fmt.Errorf("report_count: %w", err)
	}
	return domain.Report{
		ID:          get(row, colIdx, "id"),
		Lat:         lat,
		Lng:         lng,
		Severity:    severity,
		ReportCount: count,
	}, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// writeFixtures writes one heatmap per line so diffs stay readable when a
// single radius or filter changes.
func writeFixtures(path string, fixtures []domain.HeatmapFixture) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, f := range fixtures {
		line, err := json.Marshal(f)
		if err != nil {
			return err
		}
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString("  ")
		buf.Write(line)
	}
	buf.WriteString("\n]\n")
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

type distanceRow struct {
	id       string
	severity domain.Severity
	km       float64
}

func printStats(reports []domain.Report, reference domain.Coordinate, fixtures []domain.HeatmapFixture) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total reports: %d\n", len(reports))

	bySeverity := map[domain.Severity]int{}
	citizenReports := 0
	for _, r := range reports {
		bySeverity[r.Severity]++
		citizenReports += r.ReportCount
	}
	fmt.Printf("By severity: high=%d, medium=%d, low=%d\n",
		bySeverity[domain.SeverityHigh], bySeverity[domain.SeverityMedium], bySeverity[domain.SeverityLow])
	fmt.Printf("Citizen reports: %d\n", citizenReports)

	printDistances(reports, reference)
	printFixtureSummary(fixtures)
}

func printDistances(reports []domain.Report, reference domain.Coordinate) {
	rows := make([]distanceRow, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, distanceRow{id: r.ID, severity: r.Severity, km: domain.DistanceKm(reference, r.Coordinate())})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].km < rows[j].km })

	fmt.Printf("\nDistance from (%g, %g):\n", reference.Lat, reference.Lng)
	for _, r := range rows {
		fmt.Printf("  %-4s %-6s %.4f km\n", r.id, r.severity, r.km)
	}
}

func printFixtureSummary(fixtures []domain.HeatmapFixture) {
	fmt.Println("\nHeatmaps:")
	for _, f := range fixtures {
		var hot, peak int
		for _, row := range f.Intensities {
			for _, v := range row {
				if v > 0 {
					hot++
				}
				peak = max(peak, v)
			}
		}
		fmt.Printf("  %4gkm %-6s matched=%-2d total=%-2d hot_cells=%-3d peak=%d\n",
			f.RadiusKm, f.Severity, f.Matched, f.Summary.Total, hot, peak)
	}
}
