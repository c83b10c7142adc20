package backendclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Amund211/riftrewind/internal/domain"
)

type matchDataResponse struct {
	Message json.RawMessage `json:"message"`
}

func recapFromMatchDataResponse(player domain.PlayerID, statusCode int, data []byte) (domain.Recap, error) {
	if !isSuccess(statusCode) {
		return domain.Recap{}, &domain.BackendError{StatusCode: statusCode, Body: string(data)}
	}

	var response matchDataResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.Recap{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}

	return domain.NewRecap(player, response.Message)
}

type comparedPlayerResponse struct {
	Name    string          `json:"name"`
	Region  string          `json:"region"`
	Wrapped json.RawMessage `json:"wrapped"`
}

type comparisonBody struct {
	Player1    *comparedPlayerResponse `json:"player1"`
	Player2    *comparedPlayerResponse `json:"player2"`
	Comparison json.RawMessage         `json:"comparison"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// errorFromDetail surfaces the backend's `detail` field when present
func errorFromDetail(statusCode int, data []byte) error {
	var response errorResponse
	if err := json.Unmarshal(data, &response); err == nil && len(response.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(response.Detail, &detail); err == nil && detail != "" {
			return &domain.BackendError{StatusCode: statusCode, Body: detail}
		}
		if !bytes.Equal(bytes.TrimSpace(response.Detail), []byte("null")) {
			return &domain.BackendError{StatusCode: statusCode, Body: string(response.Detail)}
		}
	}
	return &domain.BackendError{StatusCode: statusCode, Body: string(data)}
}

func comparisonFromResponse(query domain.ComparisonQuery, statusCode int, data []byte) (domain.Comparison, error) {
	if !isSuccess(statusCode) {
		return domain.Comparison{}, errorFromDetail(statusCode, data)
	}

	var envelope struct {
		Message *comparisonBody `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return domain.Comparison{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}

	body := envelope.Message
	if body == nil || body.Player1 == nil {
		// Older backends return the comparison at the top level
		var topLevel comparisonBody
		if err := json.Unmarshal(data, &topLevel); err != nil {
			return domain.Comparison{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
		}
		body = &topLevel
	}

	if body.Player1 == nil || body.Player2 == nil {
		return domain.Comparison{}, fmt.Errorf("%w: missing compared players", domain.ErrMalformedResponse)
	}

	return domain.Comparison{
		Tag: query.CacheTag(),
		Player1: domain.ComparedPlayer{
			Name:   body.Player1.Name,
			Region: body.Player1.Region,
			Recap:  body.Player1.Wrapped,
		},
		Player2: domain.ComparedPlayer{
			Name:   body.Player2.Name,
			Region: body.Player2.Region,
			Recap:  body.Player2.Wrapped,
		},
		Comparison: body.Comparison,
	}, nil
}

type summonerIconResponse struct {
	IconURL string `json:"iconUrl"`
}

func iconURLFromResponse(statusCode int, data []byte) (string, error) {
	if !isSuccess(statusCode) {
		return "", &domain.BackendError{StatusCode: statusCode, Body: string(data)}
	}

	var response summonerIconResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if response.IconURL == "" {
		return "", fmt.Errorf("%w: missing iconUrl", domain.ErrMalformedResponse)
	}
	return response.IconURL, nil
}
