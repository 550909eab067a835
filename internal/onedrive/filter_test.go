package onedrive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesName(t *testing.T) {
	tests := []struct {
		name    string
		item    string
		pattern string
		want    bool
	}{
		{"empty pattern matches everything", "anything.txt", "", true},
		{"glob matches case-insensitively", "Report.PDF", "*.pdf", true},
		{"glob is anchored to whole name", "report.pdf.txt", "*.pdf", false},
		{"glob question mark", "a1.txt", "a?.txt", true},
		{"substring match", "Quarterly Report.docx", "report", true},
		{"substring case-insensitive", "BUDGET.xlsx", "budget", true},
		{"substring miss", "notes.txt", "report", false},
		{"malformed glob falls back to substring", "file[1.txt", "file[1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesName(tt.item, tt.pattern))
		})
	}
}
