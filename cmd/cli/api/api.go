package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crucial707/screentime/cmd/cli/config"
)

var client = &http.Client{Timeout: 15 * time.Second}

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("status %d: %s %v", e.Status, e.Message, e.Fields)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// Call sends payload as JSON to path on the configured API and decodes the
// response into out. token, when set, is sent as a Bearer credential.
func Call(method, path, token string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &Error{Status: resp.StatusCode}
		var errResp struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			apiErr.Message, apiErr.Fields = errResp.Error, errResp.Fields
		} else {
			apiErr.Message = string(bytes.TrimSpace(data))
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// CallAuthed is Call with the token saved by `screentime login`.
func CallAuthed(method, path string, payload, out interface{}) error {
	token, err := config.LoadToken()
	if err != nil {
		return err
	}
	return Call(method, path, token, payload, out)
}
