package category

import (
	"fmt"
	"strings"
)

// Category classifies an incident recording. The set is closed: every catalog
// record carries exactly one of these values.
type Category string

const (
	AggressionBetweenChildren Category = "AGGRESSION_BETWEEN_CHILDREN"
	AggressionTeacher         Category = "AGGRESSION_TEACHER"
	SuddenEvent               Category = "SUDDEN_EVENT"
	ChildrenUnattended        Category = "CHILDREN_UNATTENDED"
)

// Default is the category assigned when no classification signal matches.
const Default = SuddenEvent

// folderNames maps every category to its canonical storage folder. Adding a
// category without a folder entry fails the completeness check in All.
var folderNames = map[Category]string{
	AggressionBetweenChildren: "aggression_children",
	AggressionTeacher:         "aggression_teacher",
	SuddenEvent:               "sudden_event",
	ChildrenUnattended:        "children_unattended",
}

// All returns every category in a stable order.
func All() []Category {
	return []Category{
		AggressionBetweenChildren,
		AggressionTeacher,
		SuddenEvent,
		ChildrenUnattended,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	_, ok := folderNames[c]
	return ok
}

// FolderName returns the canonical storage folder for the category.
func (c Category) FolderName() string {
	if name, ok := folderNames[c]; ok {
		return name
	}
	return folderNames[Default]
}

func (c Category) String() string { return string(c) }

// Parse converts an external category string (case-insensitive) to a Category.
func Parse(value string) (Category, error) {
	normalized := Category(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.Valid() {
		return normalized, nil
	}
	return "", fmt.Errorf("unknown category %q", value)
}
