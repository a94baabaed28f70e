package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
)

// LeaderboardWorkbook renders the leaderboard as an Excel workbook for the
// dashboard's download action.
func LeaderboardWorkbook(entries []models.LeaderboardEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Leaderboard"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Name", "Email", "Tests Taken", "Average Score", "Best Score"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, entry := range entries {
		values := []interface{}{
			entry.Rank,
			entry.Name,
			entry.Email,
			entry.TestsTaken,
			entry.AvgScore,
			entry.BestScore,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+1, err)
			}
		}
	}

	return f, nil
}
