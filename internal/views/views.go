package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Amund211/riftrewind/internal/domain"
)

type Mode string

const (
	ModeSolo Mode = "solo"
	ModeDuo  Mode = "duo"
)

var entryModes = []Mode{ModeSolo, ModeDuo}

type Region struct {
	Code  string
	Label string
}

var Regions = []Region{
	{Code: "NA1", Label: "NA"},
	{Code: "EUW1", Label: "EUW"},
	{Code: "EUN1", Label: "EUNE"},
	{Code: "BR1", Label: "BR"},
	{Code: "KR", Label: "KR"},
	{Code: "PBE1", Label: "PBE"},
	{Code: "LA1", Label: "LAN"},
	{Code: "LA2", Label: "LAS"},
	{Code: "OC1", Label: "OCE"},
	{Code: "TR1", Label: "TR"},
	{Code: "RU", Label: "RU"},
	{Code: "JP1", Label: "JP"},
}

// EntryForm is the state of the entry form, echoed back when validation fails
type EntryForm struct {
	Mode     Mode
	RiotID   string
	Region   string
	RiotID2  string
	Region2  string
	TestMode bool
	Error    string
}

func (f EntryForm) selectedMode() Mode {
	if f.Mode == "" {
		return ModeSolo
	}
	return f.Mode
}

// TurnView is a chat turn ready for display. HTML is already sanitized.
type TurnView struct {
	Role string `json:"role"`
	Text string `json:"text"`
	HTML string `json:"html"`
}

type RecapView struct {
	Player   domain.PlayerID
	Summary  domain.RecapSummary
	IconURL  string
	Chat     []TurnView
	Awaiting bool
}

type ComparedPlayerView struct {
	Name    string
	Region  string
	Summary domain.RecapSummary
}

type CompareView struct {
	Player1    ComparedPlayerView
	Player2    ComparedPlayerView
	Comparison string
}

type statLine struct {
	Label string
	Value string
}

// stats lists the headline numbers of a summary, skipping the ones the backend left out
func stats(summary domain.RecapSummary) []statLine {
	var lines []statLine
	if summary.Games > 0 {
		lines = append(lines,
			statLine{Label: "Games", Value: strconv.Itoa(summary.Games)},
			statLine{Label: "Winrate", Value: fmt.Sprintf("%.1f%%", summary.Winrate)},
		)
	}
	if summary.Hours > 0 {
		lines = append(lines, statLine{Label: "Hours played", Value: fmt.Sprintf("%.0f", summary.Hours)})
	}
	for _, line := range []statLine{
		{Label: "Peak time", Value: summary.PeakTime},
		{Label: "Best month", Value: summary.BestMonth},
		{Label: "Main champion", Value: summary.MainChampion},
	} {
		if line.Value != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func championLines(champions []domain.ChampionSummary) []string {
	lines := make([]string, 0, len(champions))
	for _, champion := range champions {
		lines = append(lines, fmt.Sprintf("%s: %d games, %.0f%% winrate", champion.Name, champion.Games, champion.Winrate))
	}
	return lines
}

func comparisonTitle(view CompareView) string {
	return view.Player1.Name + " vs " + view.Player2.Name
}

func regionLabel(region string) string {
	return strings.ToUpper(region)
}
