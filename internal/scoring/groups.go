package scoring

import (
	"encoding/json"
	"fmt"
)

const (
	NumGroups     = 12
	TeamsPerGroup = 4
	TotalTeams    = NumGroups * TeamsPerGroup
)

// GroupLabels fixes the enumeration order for every rule that picks "the
// first group that qualifies". Iterating a Go map would not be stable.
var GroupLabels = [NumGroups]string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}

// Groups maps a group label to the team ids placed in it. A missing label is
// the same as an empty list; entries beyond the expected four are kept (they
// never count against a group, they just cannot make it correct twice).
type Groups map[string][]string

func (g Groups) Teams(label string) []string {
	if g == nil {
		return nil
	}
	return g[label]
}

// ParseGroups decodes a user predict payload into Groups. Payloads arrive as
// free-form JSON: values may be flat lists of team ids or nested lists, which
// are flattened. Any non-list group value is an error so the caller can skip
// just that prediction.
func ParseGroups(raw []byte) (Groups, error) {
	if len(raw) == 0 {
		return Groups{}, nil
	}
	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("decode predict payload: %w", err)
	}
	out := make(Groups, len(loose))
	for label, value := range loose {
		list, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("group %q: expected a list of team ids, got %T", label, value)
		}
		ids, err := flattenTeamIDs(list)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", label, err)
		}
		out[label] = ids
	}
	return out, nil
}

func flattenTeamIDs(list []any) ([]string, error) {
	ids := make([]string, 0, len(list))
	for _, entry := range list {
		switch v := entry.(type) {
		case string:
			ids = append(ids, v)
		case []any:
			nested, err := flattenTeamIDs(v)
			if err != nil {
				return nil, err
			}
			ids = append(ids, nested...)
		default:
			return nil, fmt.Errorf("unexpected entry of type %T", entry)
		}
	}
	return ids, nil
}

func containsTeam(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
