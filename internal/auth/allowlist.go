package auth

import "strings"

// AllowList is the set of LINE user, group or room ids the bot answers.
// An empty list allows everyone.
type AllowList struct {
	ids map[string]struct{}
}

// NewAllowList builds an allow-list, ignoring blank entries.
func NewAllowList(ids []string) *AllowList {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return &AllowList{ids: set}
}

// Open reports whether the list is empty and therefore allows everyone.
func (a *AllowList) Open() bool {
	return a == nil || len(a.ids) == 0
}

// Allows reports whether any of ids is on the list.
func (a *AllowList) Allows(ids ...string) bool {
	if a.Open() {
		return true
	}
	for _, id := range ids {
		if _, ok := a.ids[id]; ok {
			return true
		}
	}
	return false
}

// Size returns the number of configured ids.
func (a *AllowList) Size() int {
	if a == nil {
		return 0
	}
	return len(a.ids)
}
