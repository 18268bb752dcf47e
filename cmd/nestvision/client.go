package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yeldaryernazarov/NestVision/internal/api"
	"github.com/yeldaryernazarov/NestVision/internal/config"
)

// commandContext resolves the daemon API address once per invocation. The
// --api flag wins; otherwise the configured bind address is used.
type commandContext struct {
	apiFlag    *string
	configFlag *string

	client *apiClient
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{apiFlag: apiFlag, configFlag: configFlag}
}

func (c *commandContext) apiClient() (*apiClient, error) {
	if c.client != nil {
		return c.client, nil
	}

	address := strings.TrimSpace(*c.apiFlag)
	if address == "" {
		cfg, _, _, err := config.Load(*c.configFlag)
		if err != nil {
			return nil, err
		}
		address = cfg.Paths.APIBind
	}
	if address == "" {
		return nil, fmt.Errorf("no daemon API address configured")
	}

	c.client = &apiClient{
		baseURL: "http://" + address,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	return c.client, nil
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) Status() (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.get("/api/status", &status)
	return status, err
}

func (c *apiClient) Scan() (api.ScanResponse, error) {
	var resp api.ScanResponse
	err := c.post("/api/scan", nil, &resp)
	return resp, err
}

func (c *apiClient) Videos(category string) ([]api.Video, error) {
	path := "/api/videos"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var resp api.VideoListResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return resp.Videos, nil
}

func (c *apiClient) Process(req api.ProcessRequest) (api.ProcessResponse, error) {
	var resp api.ProcessResponse
	err := c.post("/api/process", req, &resp)
	return resp, err
}

func (c *apiClient) get(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *apiClient) post(path string, payload, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", &body)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("daemon: %s", payload.Error)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
