package models

import "strings"

type Club string

const (
	ClubAventuriers  Club = "AVENTURIERS"
	ClubExplorateurs Club = "EXPLORATEURS"
)

var Clubs = []Club{ClubAventuriers, ClubExplorateurs}

func (c Club) Valid() bool {
	return c == ClubAventuriers || c == ClubExplorateurs
}

type InstructorRole string

const (
	RoleAdmin        InstructorRole = "ADMIN"
	RoleAventuriers  InstructorRole = InstructorRole(ClubAventuriers)
	RoleExplorateurs InstructorRole = InstructorRole(ClubExplorateurs)
)

func (r InstructorRole) Valid() bool {
	return r == RoleAdmin || r == RoleAventuriers || r == RoleExplorateurs
}

// Club returns the club an instructor role is restricted to. Admins are not
// restricted and get an empty club.
func (r InstructorRole) Club() Club {
	if r == RoleAdmin {
		return ""
	}
	return Club(r)
}

type IconKind string

const (
	IconEmoji IconKind = "emoji"
	IconImage IconKind = "image"
)

// Icon is either an emoji or a reference to an image (URL or data URI).
type Icon struct {
	Kind  IconKind `json:"kind"`
	Value string   `json:"value"`
}

func EmojiIcon(v string) Icon { return Icon{Kind: IconEmoji, Value: v} }

func ImageIcon(uri string) Icon { return Icon{Kind: IconImage, Value: uri} }

func (i Icon) IsImage() bool { return i.Kind == IconImage }

func (i Icon) Valid() bool {
	if strings.TrimSpace(i.Value) == "" {
		return false
	}
	return i.Kind == IconEmoji || i.Kind == IconImage
}

// ParseLegacyIcon classifies an untagged icon value by its URI scheme.
func ParseLegacyIcon(v string) Icon {
	s := strings.TrimSpace(v)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "data:"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(s, "/"):
		return ImageIcon(s)
	default:
		return EmojiIcon(s)
	}
}

// UnmarshalJSON accepts both the tagged object form and a bare legacy string.
func (i *Icon) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := jsonUnmarshal(data, &s); err != nil {
			return err
		}
		*i = ParseLegacyIcon(s)
		return nil
	}

	type plain Icon
	var p plain
	if err := jsonUnmarshal(data, &p); err != nil {
		return err
	}
	if p.Kind == "" {
		p = plain(ParseLegacyIcon(p.Value))
	}
	*i = Icon(p)
	return nil
}
