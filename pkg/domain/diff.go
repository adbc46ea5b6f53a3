package domain

import (
	"reflect"
	"sort"
)

// TreeDiff represents the changes between two versions of a document.
// It is designed to be serialized to JSON for partial updates on the client.
type TreeDiff struct {
	// DocumentID is always present to identify the target.
	DocumentID string `json:"document_id"`

	// Upserted holds the new record of every added or modified node.
	Upserted map[string]SerializedNode `json:"upserted,omitempty"`

	// Removed lists deleted node ids in lexical order.
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between oldDoc and newDoc.
// If oldDoc is nil, every node of newDoc is reported (initial load).
// It returns nil when nothing changed.
func Diff(documentID string, oldDoc, newDoc SerializedNodes) *TreeDiff {
	diff := &TreeDiff{DocumentID: documentID}

	for id, n := range newDoc {
		old, exists := oldDoc[id]
		if !exists || !reflect.DeepEqual(old, n) {
			if diff.Upserted == nil {
				diff.Upserted = make(map[string]SerializedNode)
			}
			diff.Upserted[id] = n
		}
	}

	for id := range oldDoc {
		if _, exists := newDoc[id]; !exists {
			diff.Removed = append(diff.Removed, id)
		}
	}
	sort.Strings(diff.Removed)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *TreeDiff) IsEmpty() bool {
	return len(d.Upserted) == 0 && len(d.Removed) == 0
}
