package category

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// folderAliases maps accepted storage folder spellings to categories. Matching
// is exact (not substring): an unrecognized folder yields no category and the
// scanner skips it. Cyrillic spellings appear because operators drop files
// into folders named in the feed's language.
var folderAliases = map[string]Category{
	"aggression_children":  AggressionBetweenChildren,
	"aggression-children":  AggressionBetweenChildren,
	"агрессия_дети":        AggressionBetweenChildren,
	"агрессия-дети":        AggressionBetweenChildren,
	"aggression_teacher":   AggressionTeacher,
	"aggression-teacher":   AggressionTeacher,
	"агрессия_воспитатель": AggressionTeacher,
	"агрессия-воспитатель": AggressionTeacher,
	"sudden_event":         SuddenEvent,
	"sudden-event":         SuddenEvent,
	"внезапное_событие":    SuddenEvent,
	"внезапное-событие":    SuddenEvent,
	"children_unattended":  ChildrenUnattended,
	"children-unattended":  ChildrenUnattended,
	"дети_без_присмотра":   ChildrenUnattended,
	"дети-без-присмотра":   ChildrenUnattended,
}

// FromFolderName resolves a storage folder name to a category. The name is
// NFC-normalized before lookup; directories created on macOS arrive NFD and
// would otherwise never match the Cyrillic aliases.
func FromFolderName(name string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
	cat, ok := folderAliases[key]
	return cat, ok
}

// CanonicalFolders returns the storage folder names the scanner guarantees to
// exist under the storage root, in category order.
func CanonicalFolders() []string {
	cats := All()
	out := make([]string, 0, len(cats))
	for _, cat := range cats {
		out = append(out, cat.FolderName())
	}
	return out
}
