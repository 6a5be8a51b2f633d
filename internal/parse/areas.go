package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var bayTokenRe = regexp.MustCompile(`^bay[_\s-]?(\d+)$`)

// AreaSet is the decoded form of a closure's affected-areas value.
type AreaSet struct {
	EntireFacility bool
	AllBays        bool
	ConferenceRoom bool
	BayIDs         []int64
}

// Empty reports whether the set covers nothing.
func (a AreaSet) Empty() bool {
	return !a.EntireFacility && !a.AllBays && !a.ConferenceRoom && len(a.BayIDs) == 0
}

// Covers reports whether the set includes a resource. Bays match by numeric
// id; conference rooms match by type, never by id.
func (a AreaSet) Covers(id int64, conferenceRoom bool) bool {
	if a.EntireFacility {
		return true
	}
	if conferenceRoom {
		return a.ConferenceRoom
	}
	if a.AllBays {
		return true
	}
	for _, bayID := range a.BayIDs {
		if bayID == id {
			return true
		}
	}
	return false
}

// ParseAffectedAreas decodes the three encodings the closures endpoint has
// been observed to send: a literal token (entire_facility, all_bays,
// conference_room, none), a JSON array of area tokens, or a comma-joined
// string of bay_<id> tokens.
func ParseAffectedAreas(raw string) AreaSet {
	s := strings.TrimSpace(raw)
	if s == "" {
		return AreaSet{}
	}

	if strings.HasPrefix(s, "[") {
		var tokens []string
		if err := json.Unmarshal([]byte(s), &tokens); err == nil {
			return fromTokens(tokens)
		}
		// Fall through: a malformed array is treated like a plain string.
	}

	return fromTokens(strings.Split(s, ","))
}

func fromTokens(tokens []string) AreaSet {
	var set AreaSet
	for _, tok := range tokens {
		switch t := strings.ToLower(strings.TrimSpace(tok)); t {
		case "", "none":
			// ignore
		case "all", "entire_facility":
			set.EntireFacility = true
		case "all_bays":
			set.AllBays = true
		case "conference_room":
			set.ConferenceRoom = true
		default:
			if m := bayTokenRe.FindStringSubmatch(t); m != nil {
				if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
					set.BayIDs = append(set.BayIDs, id)
				}
			}
		}
	}
	return set
}
