package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

type ComparisonQuery struct {
	Player1  PlayerID
	Player2  PlayerID
	TestMode bool
}

func (q ComparisonQuery) Validate() error {
	if err := q.Player1.Validate(); err != nil {
		return fmt.Errorf("player 1: %w", err)
	}
	if err := q.Player2.Validate(); err != nil {
		return fmt.Errorf("player 2: %w", err)
	}
	return nil
}

// CacheTag is the literal query string identifying the comparison.
// Two queries reuse the same comparison only if their tags are equal.
func (q ComparisonQuery) CacheTag() string {
	parts := []string{
		"name1=" + url.QueryEscape(q.Player1.Name),
		"tag1=" + url.QueryEscape(q.Player1.Tag),
		"region1=" + url.QueryEscape(q.Player1.Region),
		"name2=" + url.QueryEscape(q.Player2.Name),
		"tag2=" + url.QueryEscape(q.Player2.Tag),
		"region2=" + url.QueryEscape(q.Player2.Region),
	}
	if q.TestMode {
		parts = append(parts, "test_mode=true")
	}
	return strings.Join(parts, "&")
}

// ComparedPlayer is one side of a backend comparison.
// Name is the riot id (name#tag) as returned by the backend.
type ComparedPlayer struct {
	Name   string
	Region string
	Recap  json.RawMessage
}

// HasRecap reports whether the backend sent a recap for this player
func (p ComparedPlayer) HasRecap() bool {
	return isPresent(p.Recap)
}

func (p ComparedPlayer) PlayerID() (PlayerID, error) {
	name, tag, err := ParseRiotID(p.Name)
	if err != nil {
		return PlayerID{}, fmt.Errorf("compared player: %w", err)
	}
	return NewPlayerID(name, tag, p.Region)
}

type Comparison struct {
	Tag        string
	Player1    ComparedPlayer
	Player2    ComparedPlayer
	Comparison json.RawMessage
}

// ComparisonText returns the natural-language comparison when the backend sent
// a plain string or a summary, and the raw JSON otherwise.
func (c Comparison) ComparisonText() string {
	var text string
	if err := json.Unmarshal(c.Comparison, &text); err == nil {
		return text
	}

	var object struct {
		OverallSummary string `json:"overall_summary"`
		Summary        string `json:"summary"`
	}
	if err := json.Unmarshal(c.Comparison, &object); err == nil {
		if object.OverallSummary != "" {
			return object.OverallSummary
		}
		if object.Summary != "" {
			return object.Summary
		}
	}

	return string(c.Comparison)
}
