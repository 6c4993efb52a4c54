package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/phrazzld/taskboard/internal/domain"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

const dueDateLayout = "2006-01-02"

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusColor(status domain.Status) string {
	switch status {
	case domain.StatusOpen:
		return ansiBlue
	case domain.StatusProgress:
		return ansiYellow
	case domain.StatusCompleted:
		return ansiGreen
	default:
		return ""
	}
}

func priorityColor(priority domain.Priority) string {
	switch priority {
	case domain.PriorityLow:
		return ansiGray
	case domain.PriorityMedium:
		return ""
	case domain.PriorityHigh:
		return ansiRed
	default:
		return ""
	}
}

func paint(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func statusBadge(status domain.Status, colorize bool) string {
	return paint(status.Label(), statusColor(status), colorize)
}

func priorityBadge(priority domain.Priority, colorize bool) string {
	return paint(priority.Label(), priorityColor(priority), colorize)
}

// formatDueDate shows date-only values as YYYY-MM-DD and anything with a
// time of day in RFC 3339.
func formatDueDate(due *time.Time) string {
	if due == nil {
		return "-"
	}
	t := due.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dueDateLayout)
	}
	return t.Format(time.RFC3339)
}

func overdueMarker(overdue, colorize bool) string {
	if !overdue {
		return ""
	}
	return paint("OVERDUE", ansiRed, colorize)
}
