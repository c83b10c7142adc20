package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Recap is a single player's season recap as produced by the backend.
// Payload is the backend's `message` object and is otherwise treated as opaque.
type Recap struct {
	Player  PlayerID
	Payload json.RawMessage
}

type recapEnvelope struct {
	WrappedData json.RawMessage `json:"wrapped_data"`
	Wrapped     json.RawMessage `json:"wrapped"`
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// NewRecap validates that payload is a recap message object
func NewRecap(player PlayerID, payload json.RawMessage) (Recap, error) {
	var envelope recapEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return Recap{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !isPresent(envelope.WrappedData) && !isPresent(envelope.Wrapped) {
		return Recap{}, fmt.Errorf("%w: missing recap data", ErrMalformedResponse)
	}

	return Recap{Player: player, Payload: payload}, nil
}

type ChampionSummary struct {
	Name    string  `json:"name"`
	Games   int     `json:"games"`
	Winrate float64 `json:"wr"`
}

// RecapSummary is the loosely-typed subset of the recap used by the pages.
// Fields the backend leaves out stay at their zero value.
type RecapSummary struct {
	Tagline      string
	Archetype    string
	Summary      string
	Games        int
	Winrate      float64
	Hours        float64
	PeakTime     string
	BestMonth    string
	MainChampion string
	TopChampions []ChampionSummary
	Highlights   []string
	FunFacts     []string
	Closing      string
}

type wrappedData struct {
	Wrapped struct {
		Tagline   string `json:"tagline"`
		Summary   string `json:"summary"`
		Archetype string `json:"archetype"`
	} `json:"wrapped"`
	Stats struct {
		Games     int     `json:"games"`
		Winrate   float64 `json:"winrate"`
		Hours     float64 `json:"hours"`
		PeakTime  string  `json:"peakTime"`
		BestMonth string  `json:"bestMonth"`
	} `json:"stats"`
	Highlights []struct {
		Title string `json:"title"`
	} `json:"highlights"`
	Champions struct {
		Main *struct {
			Name string `json:"name"`
		} `json:"main"`
		Top3 []ChampionSummary `json:"top3"`
	} `json:"champions"`
	FunFacts []string `json:"funFacts"`
	Closing  struct {
		Message string `json:"message"`
	} `json:"closing"`
}

func (r Recap) Summary() RecapSummary {
	raw := r.Payload
	for range 4 {
		var envelope recapEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return RecapSummary{}
		}

		// Stored recaps nest the data: {unique_id, wrapped_data}
		if isPresent(envelope.WrappedData) {
			raw = envelope.WrappedData
			continue
		}

		// Compared players carry {wrapped: {unique_id, wrapped_data}}
		if isPresent(envelope.Wrapped) {
			var inner recapEnvelope
			if json.Unmarshal(envelope.Wrapped, &inner) == nil && isPresent(inner.WrappedData) {
				raw = envelope.Wrapped
				continue
			}
		}

		break
	}

	var data wrappedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return RecapSummary{}
	}

	summary := RecapSummary{
		Tagline:      data.Wrapped.Tagline,
		Archetype:    data.Wrapped.Archetype,
		Summary:      data.Wrapped.Summary,
		Games:        data.Stats.Games,
		Winrate:      data.Stats.Winrate,
		Hours:        data.Stats.Hours,
		PeakTime:     data.Stats.PeakTime,
		BestMonth:    data.Stats.BestMonth,
		TopChampions: data.Champions.Top3,
		FunFacts:     data.FunFacts,
		Closing:      data.Closing.Message,
	}
	if data.Champions.Main != nil {
		summary.MainChampion = data.Champions.Main.Name
	}
	for _, highlight := range data.Highlights {
		summary.Highlights = append(summary.Highlights, highlight.Title)
	}
	return summary
}
