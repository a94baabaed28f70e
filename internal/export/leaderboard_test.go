package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
)

func TestLeaderboardWorkbook(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{Rank: 1, Name: "Ada Lovelace", Email: "ada@example.com", TestsTaken: 12, AvgScore: 91.5, BestScore: 100},
		{Rank: 2, Name: "Alan Turing", Email: "alan@example.com", TestsTaken: 8, AvgScore: 88.25, BestScore: 97},
	}

	f, err := LeaderboardWorkbook(entries)
	require.NoError(t, err)
	defer f.Close()

	// round-trip through the serialized workbook, not the in-memory handle
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	reopened, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.GetRows("Leaderboard")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Rank", "Name", "Email", "Tests Taken", "Average Score", "Best Score"}, rows[0])
	assert.Equal(t, []string{"1", "Ada Lovelace", "ada@example.com", "12", "91.5", "100"}, rows[1])
	assert.Equal(t, "Alan Turing", rows[2][1])

	// the default sheet is gone; the export is the only sheet
	assert.Equal(t, []string{"Leaderboard"}, reopened.GetSheetList())
}

func TestLeaderboardWorkbookEmpty(t *testing.T) {
	f, err := LeaderboardWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leaderboard")
	require.NoError(t, err)
	require.Len(t, rows, 1, "headers only")
}
