package telegram

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed reply is kept for logging.
const maxErrorBody = 4 << 10

// APIError is a reply from the Bot API with a status other than 200.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("telegram API responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("telegram API responded with status %d: %s", e.StatusCode, e.Body)
}

// statusClient turns every non-200 reply into an *APIError before the bot
// library tries to decode it.
type statusClient struct {
	client *http.Client
}

func (c statusClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
