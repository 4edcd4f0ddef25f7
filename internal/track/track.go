// Package track holds the fixed set of competition tracks ("domains") a team
// registers under, with the per-track limits and payment settings taken from
// configuration.
package track

import (
	"errors"
	"fmt"
	"strings"

	"zignasa/internal/config"
)

type Track string

const (
	WebDev    Track = "Web Dev"
	AgenticAI Track = "Agentic AI"
	UIUX      Track = "UI/UX"
)

var ErrUnknownTrack = errors.New("unknown track")

// All lists the tracks in display order.
var All = []Track{WebDev, AgenticAI, UIUX}

var slugs = map[Track]string{
	WebDev:    "web-dev",
	AgenticAI: "agentic-ai",
	UIUX:      "ui-ux",
}

func (t Track) Valid() bool {
	_, ok := slugs[t]
	return ok
}

func (t Track) Slug() string { return slugs[t] }

func (t Track) String() string { return string(t) }

// Parse accepts a track name or slug, case-insensitively.
func Parse(s string) (Track, error) {
	s = strings.TrimSpace(s)
	for _, t := range All {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Slug()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTrack, s)
}

// Settings are the configured limits and payment data for one track.
type Settings struct {
	Track             Track
	MaxTeamSize       int
	FeePerMemberPaise int64
	PaymentLink       string
}

type Catalog struct {
	settings map[Track]Settings
}

// Defaults used when configuration does not list a track.
var defaultMaxTeamSize = map[Track]int{
	WebDev:    5,
	AgenticAI: 5,
	UIUX:      3,
}

// NewCatalog merges configured track entries over the defaults.
func NewCatalog(entries []config.TrackConfig) (*Catalog, error) {
	c := &Catalog{settings: make(map[Track]Settings, len(All))}
	for _, t := range All {
		c.settings[t] = Settings{Track: t, MaxTeamSize: defaultMaxTeamSize[t]}
	}

	for _, e := range entries {
		t, err := Parse(e.Name)
		if err != nil {
			return nil, fmt.Errorf("tracks: %w", err)
		}
		s := c.settings[t]
		if e.MaxTeamSize < 0 || e.FeePerMemberPaise < 0 {
			return nil, fmt.Errorf("tracks: %s has a negative limit", t)
		}
		if e.MaxTeamSize > 0 {
			s.MaxTeamSize = e.MaxTeamSize
		}
		s.FeePerMemberPaise = e.FeePerMemberPaise
		s.PaymentLink = strings.TrimSpace(e.PaymentLink)
		c.settings[t] = s
	}
	return c, nil
}

func (c *Catalog) Lookup(t Track) (Settings, error) {
	s, ok := c.settings[t]
	if !ok {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownTrack, string(t))
	}
	return s, nil
}

// BySlug resolves the URL form of a track.
func (c *Catalog) BySlug(slug string) (Settings, error) {
	for _, t := range All {
		if t.Slug() == slug {
			return c.settings[t], nil
		}
	}
	return Settings{}, fmt.Errorf("%w: %q", ErrUnknownTrack, slug)
}

func (c *Catalog) All() []Settings {
	out := make([]Settings, 0, len(All))
	for _, t := range All {
		out = append(out, c.settings[t])
	}
	return out
}

// Amount is the charge in paise for a team of n members.
func (s Settings) Amount(n int) int64 {
	return s.FeePerMemberPaise * int64(n)
}
