package registration

import (
	"fmt"

	"zignasa/internal/team"
	"zignasa/internal/track"
)

type slotView struct {
	Index  int
	Label  string
	Member team.Member
}

type formView struct {
	Track    string
	Slug     string
	TeamName string
	TeamSize int
	Sizes    []int
	Slots    []slotView
	Fee      int64
	Error    string
}

// newFormView lays out one slot per allowed member, prefilled from f.
func newFormView(s track.Settings, f Form, errMsg string) formView {
	v := formView{
		Track:    s.Track.String(),
		Slug:     s.Track.Slug(),
		TeamName: f.TeamName,
		TeamSize: f.TeamSize,
		Fee:      s.FeePerMemberPaise,
		Error:    errMsg,
	}
	for n := 1; n <= s.MaxTeamSize; n++ {
		v.Sizes = append(v.Sizes, n)
	}
	for i := 0; i < s.MaxTeamSize; i++ {
		slot := slotView{Index: i, Label: fmt.Sprintf("Member %d", i+1)}
		if i == 0 {
			slot.Label = "Team lead"
		}
		if i < len(f.Members) {
			slot.Member = f.Members[i]
		}
		v.Slots = append(v.Slots, slot)
	}
	return v
}
