package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// sessionLabel renders a session token for display, e.g. "sprint-qualifying"
// becomes "Sprint Qualifying" and "fp1" becomes "FP1".
func sessionLabel(eventType string) string {
	token := strings.ToLower(strings.TrimSpace(eventType))
	if token == "" {
		return ""
	}
	switch token {
	case "fp1", "fp2", "fp3":
		return strings.ToUpper(token)
	}
	parts := strings.Split(token, "-")
	for i, part := range parts {
		parts[i] = titleCaser.String(part)
	}
	return strings.Join(parts, " ")
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.FieldsFunc(status, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, part := range parts {
		parts[i] = titleCaser.String(strings.ToLower(part))
	}
	return strings.Join(parts, " ")
}

func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02 15:04")
}

func formatSize(sizeMB int64) string {
	if sizeMB <= 0 {
		return "-"
	}
	if sizeMB >= 1024 {
		return fmt.Sprintf("%.1f GB", float64(sizeMB)/1024)
	}
	return fmt.Sprintf("%d MB", sizeMB)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
