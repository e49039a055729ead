package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() *ExportRepositoryImpl {
	return &ExportRepositoryImpl{now: time.Now}
}

// ExportSnapshotToJSON grava o snapshot completo como JSON indentado.
func (r *ExportRepositoryImpl) ExportSnapshotToJSON(snapshot *entity.Snapshot, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportFindingsToCSV grava um finding por linha.
func (r *ExportRepositoryImpl) ExportFindingsToCSV(snapshot *entity.Snapshot, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	headers := []string{
		"Account ID", "Account Name", "Region", "Config Rule", "Resource Type", "Resource ID",
		"Compliance", "Recorded At", "Conformance Pack", "Attribution", "Degraded",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	names := entity.NewAccountIndex(snapshot.Accounts)
	for _, f := range snapshot.NonCompliantDetails {
		recorded := ""
		if f.ResultRecordedTime != nil {
			recorded = f.ResultRecordedTime.UTC().Format(time.RFC3339)
		}
		pack := ""
		if f.ConformancePackName != nil {
			pack = *f.ConformancePackName
		}
		degraded := ""
		if f.Degraded {
			degraded = f.DegradationReason
		}
		record := []string{
			f.AccountID,
			names.Name(f.AccountID),
			f.AwsRegion,
			f.ConfigRuleName,
			f.ResourceType,
			f.ResourceID,
			f.ComplianceType,
			recorded,
			pack,
			string(f.AttributionMethod),
			degraded,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportSnapshotToPDF gera um resumo executivo do snapshot.
func (r *ExportRepositoryImpl) ExportSnapshotToPDF(snapshot *entity.Snapshot, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		content = cleanRichTags(content)
		if content == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by AWS Compliance Dashboard (Go) | %s", snapshot.LastUpdated)
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Compliance Snapshot: %s", snapshot.AggregatorName)), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Run %s | %s", snapshot.RunID, snapshot.LastUpdated)), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	org := snapshot.OrganizationCompliance
	stats := snapshot.Statistics
	drawSection("Organization", fmt.Sprintf(
		"Compliance: %.2f%%\nRules: %d compliant / %d non-compliant / %d total\nAccounts: %d (average %.2f%%)",
		org.CompliancePercentage, org.CompliantRules, org.NonCompliantRules, org.TotalRules,
		stats.TotalAccounts, stats.AverageCompliance,
	))

	dist := stats.ComplianceDistribution
	drawSection("Compliance Distribution", fmt.Sprintf(
		"Excellent (>=95%%): %d\nGood (>=80%%): %d\nFair (>=60%%): %d\nPoor (<60%%): %d",
		dist.Excellent, dist.Good, dist.Fair, dist.Poor,
	))

	drawSection("Findings", fmt.Sprintf(
		"Total: %d\nPlaceholders (detail unavailable): %d\nUnattributed: %d\nRules without evaluations: %d\nCapped rules: %d",
		stats.TotalFindings, stats.PlaceholderFindings, stats.UnattributedFindings,
		stats.RulesWithoutEvaluations, stats.CappedRules,
	))

	var top strings.Builder
	for i, rule := range stats.TopNonCompliantRules {
		fmt.Fprintf(&top, "%d. %s: %d findings in %d accounts\n", i+1, rule.ConfigRuleName, rule.Findings, rule.Accounts)
	}
	drawSection("Top Non-Compliant Rules", strings.TrimSpace(top.String()))

	methods := make([]string, 0, len(stats.AttributionMethods))
	for m, n := range stats.AttributionMethods {
		methods = append(methods, fmt.Sprintf("%s: %d", m, n))
	}
	sort.Strings(methods)
	drawSection("Attribution Methods", strings.Join(methods, "\n"))

	if len(snapshot.AccountCompliance) > 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr("Account Compliance"))
		pdf.Ln(10)

		widths := []float64{35, 65, 30, 30, 30}
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		for i, h := range []string{"Account ID", "Name", "Compliance", "Rules", "Findings"} {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for _, acc := range snapshot.AccountCompliance {
			name := acc.AccountName
			if len(name) > 35 {
				name = name[:32] + "..."
			}
			pdf.CellFormat(widths[0], 6, tr(acc.AccountID), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, tr(name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f%%", acc.OverallCompliancePercentage), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], 6, fmt.Sprintf("%d/%d", acc.TotalCompliant, acc.TotalRules), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], 6, fmt.Sprintf("%d", acc.Findings), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(8)
	}

	if len(snapshot.Degradations) > 0 {
		var deg strings.Builder
		for _, d := range snapshot.Degradations {
			fmt.Fprintf(&deg, "[%s] %s (%s): %s\n", d.Stage, d.Target, d.Kind, d.Message)
		}
		drawSection("Degradations", strings.TrimSpace(deg.String()))
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
