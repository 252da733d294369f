package workflow

import (
	"encoding/json"
	"errors"
)

// ErrorMessage turns a gateway failure into the text shown to the user.
// The most specific upstream reason wins: a details string, then
// details.error.message, then the raw details JSON, then airtable_error,
// then the gateway's own error. Anything else yields err's text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		return err.Error()
	}

	if msg := detailsMessage(gwErr.Body.Details); msg != "" {
		return msg
	}
	if gwErr.Body.AirtableError != "" {
		return gwErr.Body.AirtableError
	}
	if gwErr.Body.Error != "" {
		return gwErr.Body.Error
	}
	return err.Error()
}

func detailsMessage(details json.RawMessage) string {
	if len(details) == 0 || string(details) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(details, &s); err == nil {
		return s
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(details, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	return string(details)
}
