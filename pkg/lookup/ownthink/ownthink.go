package ownthink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Shen-Yuuu/MindFlow-Reader/pkg/logger"
)

const defaultBaseURL = "https://api.ownthink.com"

// OwnThinkClient fetches brief term descriptions from the OwnThink
// knowledge graph API.
type OwnThinkClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOwnThinkClientParams contains configuration for creating an
// OwnThinkClient.
type NewOwnThinkClientParams struct {
	BaseURL string
	Timeout time.Duration
}

// NewOwnThinkClient creates a definition client against the OwnThink API,
// or a compatible endpoint when BaseURL is set.
func NewOwnThinkClient(params NewOwnThinkClientParams) *OwnThinkClient {
	base := params.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &OwnThinkClient{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type knowledgeResponse struct {
	Message string `json:"message"`
	Data    struct {
		Desc string `json:"desc"`
	} `json:"data"`
}

// Definition fetches a short description for term. Any failure, missing
// entity, or empty description yields an empty definition and a nil error;
// lookup failures never propagate.
func (c *OwnThinkClient) Definition(ctx context.Context, term string) (string, error) {
	body, err := json.Marshal(map[string]string{"entity": term})
	if err != nil {
		return "", nil
	}

	url := fmt.Sprintf("%s/kg/knowledge", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Warn("[Lookup] Failed to build definition request", "term", term, "err", err)
		return "", nil
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("[Lookup] Definition request failed", "term", term, "err", err)
		return "", nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		logger.Warn("[Lookup] Definition request returned non-OK status", "term", term, "status", res.StatusCode)
		return "", nil
	}

	var data knowledgeResponse
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		logger.Warn("[Lookup] Failed to decode definition response", "term", term, "err", err)
		return "", nil
	}

	if data.Message != "success" || data.Data.Desc == "" {
		logger.Debug("[Lookup] No definition found", "term", term, "message", data.Message)
		return "", nil
	}

	return data.Data.Desc, nil
}
