package webhookpubsub

import (
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/ratelimit"
)

// client is a rate limited HTTP client. Outbound notifications are capped
// so a settlement burst cannot flood a slow receiver.
type client struct {
	*http.Client
	limiter ratelimit.Limiter
}

func newHTTPClient(requestTimeout time.Duration, requestsPerSecond int) *client {
	return &client{
		Client:  &http.Client{Timeout: requestTimeout},
		limiter: ratelimit.New(requestsPerSecond),
	}
}

func (c *client) post(
	url, bodyString string, header map[string]string,
) (int, string, error) {
	body := strings.NewReader(bodyString)
	req, err := http.NewRequest("POST", url, body)
	if err != nil {
		return 0, "", err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	c.limiter.Take()
	return c.doRequest(req)
}

func (c *client) doRequest(req *http.Request) (int, string, error) {
	rs, err := c.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return -1, "", err
	}
	return rs.StatusCode, string(bodyBytes), nil
}
