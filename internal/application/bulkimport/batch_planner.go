package bulkimport

import (
	"strconv"
	"strings"
	"time"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

// Batch is a set of rows sharing group, program and exam window. Batches are
// built once by PlanBatches and only read afterwards.
type Batch struct {
	Key       string
	GroupName string
	GroupID   int64
	ProgramID int64
	ExamStart time.Time
	ExamEnd   time.Time
	Rows      []domain.ImportRow
}

func (b Batch) Size() int {
	return len(b.Rows)
}

// PlanBatches groups ready rows by batch key, keeping the order in which
// each key is first seen. Rows without a program or exam window are skipped;
// the validator never marks such rows READY.
func PlanBatches(rows []domain.ImportRow, tables *ReferenceTables) []Batch {
	index := make(map[string]int)
	batches := make([]Batch, 0)

	for _, row := range rows {
		n := row.NormalizedData
		if n.ProgramID == 0 || n.ExamStart == nil || n.ExamEnd == nil {
			continue
		}

		groupName, groupID := effectiveGroup(row, tables)
		key := batchKey(groupName, n.ProgramID, *n.ExamStart, *n.ExamEnd)
		if _, ok := tables.lookupGroup(groupID); groupID > 0 && !ok {
			key = "override:" + strconv.FormatInt(groupID, 10) + "|" + key
		}

		i, ok := index[key]
		if !ok {
			i = len(batches)
			index[key] = i
			batches = append(batches, Batch{
				Key:       key,
				GroupName: groupName,
				GroupID:   groupID,
				ProgramID: n.ProgramID,
				ExamStart: *n.ExamStart,
				ExamEnd:   *n.ExamEnd,
			})
		}
		batches[i].Rows = append(batches[i].Rows, row)
	}

	return batches
}

// effectiveGroup prefers the group chosen by override or matcher over the
// declared name. A matched id unknown to the account falls back to the name;
// an overridden id never does, so the executor can fail that batch instead of
// creating a group from the unconfirmed name.
func effectiveGroup(row domain.ImportRow, tables *ReferenceTables) (string, int64) {
	name := strings.TrimSpace(row.NormalizedData.GroupName)
	if row.OverrideData != nil && row.OverrideData.GroupID > 0 {
		id := row.OverrideData.GroupID
		if g, ok := tables.lookupGroup(id); ok {
			return g.Name, g.ID
		}
		return name, id
	}
	if row.MatchedGroupID != nil {
		if g, ok := tables.lookupGroup(*row.MatchedGroupID); ok {
			return g.Name, g.ID
		}
	}
	return name, 0
}

func batchKey(groupName string, programID int64, start, end time.Time) string {
	return strings.Join([]string{
		domain.NormalizeKey(groupName),
		strconv.FormatInt(programID, 10),
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
	}, "|")
}
