package registration

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"zignasa/internal/team"
)

// maxFormSlots bounds how many member slots are read from a posted form.
const maxFormSlots = 20

// Form is one registration submission. Members may contain blank slots;
// Submit drops them.
type Form struct {
	TeamName string        `json:"teamName"`
	Track    string        `json:"track"`
	TeamSize int           `json:"teamSize"`
	Members  []team.Member `json:"members"`
}

// FormFromValues reads a urlencoded form with fields team_name, team_size and
// members[i].name|email|phone|college|roll_number.
func FormFromValues(trackName string, values url.Values) Form {
	f := Form{
		TeamName: values.Get("team_name"),
		Track:    trackName,
	}
	f.TeamSize, _ = strconv.Atoi(strings.TrimSpace(values.Get("team_size")))

	for i := 0; i < maxFormSlots; i++ {
		field := func(name string) string {
			return values.Get(fmt.Sprintf("members[%d].%s", i, name))
		}
		m := team.Member{
			Name:       field("name"),
			Email:      field("email"),
			Phone:      field("phone"),
			College:    field("college"),
			RollNumber: field("roll_number"),
		}
		if m == (team.Member{}) {
			if _, ok := values[fmt.Sprintf("members[%d].name", i)]; !ok {
				break
			}
		}
		f.Members = append(f.Members, m)
	}
	return f
}

// activeMembers keeps the members with a name, in order, up to size.
func activeMembers(members []team.Member, size int) []team.Member {
	out := make([]team.Member, 0, len(members))
	for _, m := range members {
		m = m.Trimmed()
		if m.Name == "" {
			continue
		}
		out = append(out, m)
	}
	if size >= 0 && len(out) > size {
		out = out[:size]
	}
	return out
}
