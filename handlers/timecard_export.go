package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"p9e.in/corecut/config"
	"p9e.in/corecut/models"
)

// ExportTimecards streams an xlsx of timecards in the requested window
// (?from=/?to=, clock-in date) for payroll.
func ExportTimecards(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("clock_in_time ASC")
	if from := r.URL.Query().Get("from"); from != "" {
		day, err := time.Parse("2006-01-02", from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from filter, want YYYY-MM-DD")
			return
		}
		q = q.Where("clock_in_time >= ?", day)
	}
	if to := r.URL.Query().Get("to"); to != "" {
		day, err := time.Parse("2006-01-02", to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to filter, want YYYY-MM-DD")
			return
		}
		q = q.Where("clock_in_time < ?", day.AddDate(0, 0, 1))
	}

	var cards []models.Timecard
	if err := q.Find(&cards).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	// Resolve operator names in one query.
	names := map[string]string{}
	var users []models.User
	if err := config.DB.Select("id", "name").Find(&users).Error; err == nil {
		for _, u := range users {
			names[u.ID.String()] = u.Name
		}
	}

	f, err := buildTimecardSheet(cards, names)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate Excel file")
		return
	}
	buffer, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to write Excel file")
		return
	}

	filename := fmt.Sprintf("timecards_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

var timecardHeaders = []string{"Operator", "Clock In", "Clock Out", "Total Hours", "In Lat", "In Lng", "Out Lat", "Out Lng"}

func buildTimecardSheet(cards []models.Timecard, names map[string]string) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Timecards"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	f.SetCellValue(sheetName, "A1", "Timecard Export")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for colIdx, header := range timecardHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(colIdx + 1)
		f.SetColWidth(sheetName, col, col, 20)
	}

	var totalHours float64
	for rowIdx, card := range cards {
		row := rowIdx + 5
		name := names[card.UserID.String()]
		if name == "" {
			name = card.UserID.String()
		}
		values := []interface{}{
			name,
			card.ClockInTime.Format("2006-01-02 15:04:05"),
			"",
			"",
			card.ClockInLat,
			card.ClockInLng,
			"",
			"",
		}
		if card.ClockOutTime != nil {
			values[2] = card.ClockOutTime.Format("2006-01-02 15:04:05")
		}
		if card.TotalHours != nil {
			values[3] = *card.TotalHours
			totalHours += *card.TotalHours
		}
		if card.ClockOutLat != nil {
			values[6] = *card.ClockOutLat
		}
		if card.ClockOutLng != nil {
			values[7] = *card.ClockOutLng
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	summaryRow := len(cards) + 6
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	})
	keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow)
	f.SetCellValue(sheetName, keyCell, "Total Hours")
	f.SetCellValue(sheetName, valueCell, totalHours)
	f.SetCellStyle(sheetName, keyCell, keyCell, summaryStyle)

	return f, nil
}
