package team

import "strings"

// Member is the profile a submitter enters for one team member. It travels
// through the form, the handoff and the verification request unchanged.
type Member struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	College    string `json:"college" validate:"required,max=200"`
	RollNumber string `json:"rollNumber" validate:"required,max=50"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (m Member) Trimmed() Member {
	return Member{
		Name:       strings.TrimSpace(m.Name),
		Email:      strings.TrimSpace(m.Email),
		Phone:      strings.TrimSpace(m.Phone),
		College:    strings.TrimSpace(m.College),
		RollNumber: strings.TrimSpace(m.RollNumber),
	}
}

// Registration builds the row for this member at position i of the team.
func (m Member) Registration(teamID int64, i int) *Registration {
	return &Registration{
		TeamID:     teamID,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		College:    m.College,
		RollNumber: m.RollNumber,
		Role:       RoleFor(i),
	}
}
