package verify

import (
	"fmt"
	"io"
	"os"
)

// WriteReport writes one line per issue, in the order given.
func WriteReport(w io.Writer, issues []Issue) {
	for _, issue := range issues {
		fmt.Fprintln(w, issue.String())
	}
}

// Summary counts issues by type.
func Summary(issues []Issue) (syntax, warnings int) {
	for _, issue := range issues {
		if issue.Fatal() {
			syntax++
		} else {
			warnings++
		}
	}
	return syntax, warnings
}

// SaveReportToFile saves the report to a file
func SaveReportToFile(filename string, issues []Issue) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	WriteReport(file, issues)
	return nil
}
