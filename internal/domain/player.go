package domain

import (
	"fmt"
	"strings"
)

type PlayerID struct {
	Name   string
	Tag    string
	Region string
}

func NewPlayerID(name, tag, region string) (PlayerID, error) {
	if name == "" {
		return PlayerID{}, fmt.Errorf("%w: name", ErrMissingParameter)
	}
	if tag == "" {
		return PlayerID{}, fmt.Errorf("%w: tag", ErrMissingParameter)
	}
	if region == "" {
		return PlayerID{}, fmt.Errorf("%w: region", ErrMissingParameter)
	}
	return PlayerID{Name: name, Tag: tag, Region: region}, nil
}

// Validate reports a missing name, tag or region
func (p PlayerID) Validate() error {
	_, err := NewPlayerID(p.Name, p.Tag, p.Region)
	return err
}

// CacheKey is the case-insensitive identity of the player: name#tag#region
func (p PlayerID) CacheKey() string {
	return PlayerCacheKey(p.Name, p.Tag, p.Region)
}

func (p PlayerID) RiotID() string {
	return fmt.Sprintf("%s#%s", p.Name, p.Tag)
}

func PlayerCacheKey(name, tag, region string) string {
	return strings.ToLower(fmt.Sprintf("%s#%s#%s", name, tag, region))
}

// ParseRiotID splits a riot id of the form name#tag.
// Exactly one '#' is allowed.
func ParseRiotID(raw string) (string, string, error) {
	name, tag, found := strings.Cut(strings.TrimSpace(raw), "#")
	if !found {
		return "", "", fmt.Errorf("%w: missing '#' separator", ErrInvalidRiotID)
	}

	if strings.Contains(tag, "#") {
		return "", "", fmt.Errorf("%w: more than one '#' separator", ErrInvalidRiotID)
	}

	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" {
		return "", "", fmt.Errorf("%w: empty name", ErrInvalidRiotID)
	}
	if tag == "" {
		return "", "", fmt.Errorf("%w: empty tag", ErrInvalidRiotID)
	}

	return name, tag, nil
}
