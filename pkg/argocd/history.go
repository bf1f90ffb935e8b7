package argocd

import (
	"bufio"
	"strconv"
	"strings"
	"time"
)

const historyDateLayout = "2006-01-02 15:04:05 -0700 MST"

// ParseHistoryTable parses the table printed by `argocd app history`.
// Rows whose first column is not a history ID (headers, SOURCE lines) are skipped.
// The revision is the last column; a "branch (sha)" pair yields the sha.
// The result is sorted oldest first regardless of the order rows were printed in.
func ParseHistoryTable(out string) []HistoryEntry {
	entries := make([]HistoryEntry, 0)

	scanner := bufio.NewScanner(strings.NewReader(out))

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		if len(fields) < 2 {
			continue
		}

		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || id < 0 {
			continue
		}

		entry := HistoryEntry{
			ID:       HistoryID(id),
			Revision: revisionColumn(fields[1:]),
		}

		if len(fields) >= 5 {
			if t, err := time.Parse(historyDateLayout, strings.Join(fields[1:5], " ")); err == nil {
				entry.DeployedAt = t
			}
		}

		entries = append(entries, entry)
	}

	SortHistory(entries)

	return entries
}

func revisionColumn(fields []string) string {
	last := fields[len(fields)-1]

	if strings.HasPrefix(last, "(") && strings.HasSuffix(last, ")") {
		return strings.Trim(last, "()")
	}

	return last
}
