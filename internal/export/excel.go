package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"fomeninja/internal/models"
	"fomeninja/internal/schedule"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

var columnHeaders = []string{"Data", "Hora", "Nome", "Telefone", "Pessoas", "Mesa", "Status", "Observações"}

// Exporter writes reservation reports as Excel workbooks.
type Exporter struct {
	dir    string
	logger *zerolog.Logger
}

func NewExporter(dir string, logger *zerolog.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// Reservations writes the reservations dated within [startDate, endDate] to
// an xlsx file and returns its path. Dates are YYYY-MM-DD.
func (e *Exporter) Reservations(reservations []models.Reservation, startDate, endDate string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	rows := make([]models.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Date >= startDate && r.Date <= endDate {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if c := schedule.CompareSlots(rows[i].Time, rows[j].Time); c != 0 {
			return c < 0
		}
		return rows[i].ID < rows[j].ID
	})

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Reservas"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Período: %s - %s", startDate, endDate))

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.MergeCell(sheetName, "A1", "H1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for col, header := range columnHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range rows {
		values := []interface{}{r.Date, r.Time, r.Name, r.Phone, r.PartySize, r.TableID, statusLabel(r.Status), r.Notes}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+3)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 12)
	_ = f.SetColWidth(sheetName, "C", "D", 25)
	_ = f.SetColWidth(sheetName, "H", "H", 40)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservas_%s_a_%s_%d.xlsx", startDate, endDate, time.Now().Unix())
	filePath := filepath.Join(e.dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(rows)).Msg("excel report created")
	return filePath, nil
}

func statusLabel(status string) string {
	switch status {
	case models.StatusConfirmed:
		return "Confirmada"
	case models.StatusPending:
		return "Pendente"
	case models.StatusCancelled:
		return "Cancelada"
	case models.StatusCompleted:
		return "Concluída"
	default:
		return status
	}
}
