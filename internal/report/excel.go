// Package report writes the gathered zone data to an Excel workbook: a zone
// summary sheet, four consolidated record sheets, and one sheet per zone.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/dns-gather/internal/consolidate"
	"github.com/yourusername/dns-gather/internal/model"
)

const (
	headerBgColor   = "4472C4"
	headerFontColor = "FFFFFF"
	maxColumnWidth  = 50
)

var invalidSheetChars = regexp.MustCompile(`[\\/*?:\[\]]`)

// Exporter writes DNS-Gather workbooks into an output directory.
type Exporter struct {
	outputDir string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewExporter creates an Exporter. The output directory is created on the
// first Write.
func NewExporter(outputDir string, logger zerolog.Logger) *Exporter {
	return &Exporter{
		outputDir: outputDir,
		logger:    logger.With().Str("component", "exporter").Logger(),
		now:       time.Now,
	}
}

// Write builds the workbook for the given zones and records and saves it
// under a timestamped filename, returning the file path.
func (e *Exporter) Write(zones []model.ZoneInfo, recordsByZone map[string][]model.DNSRecord) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the zone summary, keeping it first.
	if err := f.SetSheetName("Sheet1", "Zone List"); err != nil {
		return "", fmt.Errorf("failed to create zone list sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerBgColor}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: headerFontColor},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	zoneRows := make([][]interface{}, 0, len(zones))
	for _, z := range zones {
		zoneRows = append(zoneRows, []interface{}{
			z.Name, z.ZoneType, z.Serial, z.RecordCount, z.TransferStatus, z.ErrorMessage,
		})
	}
	if err := writeSheet(f, "Zone List", headerStyle,
		[]string{"Zone Name", "Type", "Serial", "Record Count", "Transfer Status", "Error Message"},
		zoneRows); err != nil {
		return "", err
	}

	tables := consolidate.Build(zones, recordsByZone)

	ptrRows := make([][]interface{}, 0, len(tables.PTR))
	for _, r := range tables.PTR {
		ptrRows = append(ptrRows, []interface{}{r.IPAddress, r.FQDN, r.Zone, r.TTL})
	}
	if err := addSheet(f, "PTR Records", headerStyle,
		[]string{"IP Address", "FQDN", "Zone", "TTL"}, ptrRows); err != nil {
		return "", err
	}

	cnameRows := make([][]interface{}, 0, len(tables.CNAME))
	for _, r := range tables.CNAME {
		cnameRows = append(cnameRows, []interface{}{r.Name, r.Target, r.Zone, r.TTL})
	}
	if err := addSheet(f, "CNAME Records", headerStyle,
		[]string{"Name", "Target", "Zone", "TTL"}, cnameRows); err != nil {
		return "", err
	}

	srvRows := make([][]interface{}, 0, len(tables.SRV))
	for _, r := range tables.SRV {
		srvRows = append(srvRows, []interface{}{r.Service, r.Priority, r.Weight, r.Port, r.Target, r.Zone, r.TTL})
	}
	if err := addSheet(f, "SRV Records", headerStyle,
		[]string{"Service", "Priority", "Weight", "Port", "Target", "Zone", "TTL"}, srvRows); err != nil {
		return "", err
	}

	aaaaRows := make([][]interface{}, 0, len(tables.AAAA))
	for _, r := range tables.AAAA {
		aaaaRows = append(aaaaRows, []interface{}{r.Name, r.IPv6Address, r.Zone, r.TTL})
	}
	if err := addSheet(f, "AAAA Records", headerStyle,
		[]string{"Name", "IPv6 Address", "Zone", "TTL"}, aaaaRows); err != nil {
		return "", err
	}

	for _, zone := range zones {
		records := recordsByZone[zone.Name]
		rows := make([][]interface{}, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []interface{}{rec.Name, rec.Type, rec.TTL, rec.Data})
		}
		if err := addSheet(f, SanitizeSheetName(zone.Name), headerStyle,
			[]string{"Name", "Type", "TTL", "Data"}, rows); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.outputDir, e.filename())
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info().Str("path", path).Int("zones", len(zones)).Msg("Workbook written")
	return path, nil
}

func (e *Exporter) filename() string {
	return fmt.Sprintf("DNS-Gather_%s.xlsx", e.now().Format("20060102-15-04"))
}

func addSheet(f *excelize.File, name string, headerStyle int, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return writeSheet(f, name, headerStyle, headers, rows)
}

func writeSheet(f *excelize.File, name string, headerStyle int, headers []string, rows [][]interface{}) error {
	widths := make([]int, len(headers))

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return fmt.Errorf("failed to write header on %s: %w", name, err)
		}
		widths[col] = len(h)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(name, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header on %s: %w", name, err)
	}

	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(name, cell, value); err != nil {
				return fmt.Errorf("failed to write row on %s: %w", name, err)
			}
			if col < len(widths) {
				if l := len(fmt.Sprint(value)); l > widths[col] {
					widths[col] = l
				}
			}
		}
	}

	for col, w := range widths {
		width := float64(w + 2)
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(name, colName, colName, width); err != nil {
			return fmt.Errorf("failed to size columns on %s: %w", name, err)
		}
	}

	return nil
}

// SanitizeSheetName makes a zone name safe for use as an Excel sheet name:
// invalid characters become underscores, the result is capped at 31
// characters and stripped of leading/trailing dots and spaces.
func SanitizeSheetName(name string) string {
	sanitized := invalidSheetChars.ReplaceAllString(name, "_")
	if len(sanitized) > 31 {
		sanitized = sanitized[:31]
	}
	sanitized = strings.Trim(sanitized, ". ")
	if sanitized == "" {
		sanitized = "Zone"
	}
	return sanitized
}
