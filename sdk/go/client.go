package channelossdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Channel OS HTTP API client.
type Client struct {
	BaseURL    string
	BasePath   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

type IdeaInput struct {
	Niche   string `json:"niche"`
	Persona string `json:"persona"`
	Goal    string `json:"goal"`
	Cadence string `json:"cadence"`
}

type Idea struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Hook            string   `json:"hook"`
	ProductionNotes []string `json:"production_notes"`
}

type TitleEvaluation struct {
	Score       int      `json:"score"`
	Feedback    []string `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

type ScriptSection struct {
	Heading string `json:"heading"`
	Beat    string `json:"beat"`
}

type ScriptOutline struct {
	ColdOpen     string          `json:"cold_open"`
	Hook         string          `json:"hook"`
	BodySections []ScriptSection `json:"body_sections"`
	Outro        string          `json:"outro"`
	BrollPrompts []string        `json:"broll_prompts"`
}

type ChecklistItem struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// WorkflowItem is a card on the production board.
type WorkflowItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Owner     string          `json:"owner"`
	Phase     string          `json:"phase"`
	Deadline  string          `json:"deadline"`
	Checklist []ChecklistItem `json:"checklist"`
}

type Recipe struct {
	Name    string   `json:"name"`
	Trigger string   `json:"trigger"`
	Phase   string   `json:"phase,omitempty"`
	Stack   []string `json:"stack"`
	Result  string   `json:"result"`
}

type ScheduleEntry struct {
	Title            string `json:"title"`
	Release          string `json:"release"`
	Teaser           string `json:"teaser"`
	RetentionMission string `json:"retention_mission"`
}

// Event represents a log entry.
type Event struct {
	ID       int64  `json:"id"`
	TS       string `json:"ts"`
	Type     string `json:"type"`
	EntityID string `json:"entity_id"`
	Payload  string `json:"payload_json"`
}

type LockResult struct {
	Ideas    []Idea         `json:"ideas"`
	Workflow []WorkflowItem `json:"workflow"`
	Added    int            `json:"added"`
}

type MoveResult struct {
	Item    WorkflowItem `json:"item"`
	Moved   bool         `json:"moved"`
	Recipes []Recipe     `json:"recipes"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

func (c *Client) Input(ctx context.Context) (IdeaInput, error) {
	var resp IdeaInput
	err := c.do(ctx, http.MethodGet, "input", nil, &resp)
	return resp, err
}

func (c *Client) SetInput(ctx context.Context, in IdeaInput) (IdeaInput, error) {
	var resp IdeaInput
	err := c.do(ctx, http.MethodPut, "input", in, &resp)
	return resp, err
}

// SuggestIdeas previews a batch without locking it.
func (c *Client) SuggestIdeas(ctx context.Context) ([]Idea, error) {
	var resp struct {
		Items []Idea `json:"items"`
	}
	err := c.do(ctx, http.MethodPost, "ideas/suggest", nil, &resp)
	return resp.Items, err
}

// LockIdeas locks a batch and merges it onto the board.
func (c *Client) LockIdeas(ctx context.Context) (LockResult, error) {
	var resp LockResult
	err := c.do(ctx, http.MethodPost, "ideas/lock", nil, &resp)
	return resp, err
}

func (c *Client) Ideas(ctx context.Context) ([]Idea, error) {
	var resp struct {
		Items []Idea `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "ideas", nil, &resp)
	return resp.Items, err
}

func (c *Client) ScoreTitle(ctx context.Context, title string) (TitleEvaluation, error) {
	var resp TitleEvaluation
	err := c.do(ctx, http.MethodPost, "titles/score", map[string]string{"title": title}, &resp)
	return resp, err
}

// LogTitle records a title iteration and returns the updated history.
func (c *Client) LogTitle(ctx context.Context, title string) ([]string, error) {
	var resp struct {
		Items []string `json:"items"`
	}
	err := c.do(ctx, http.MethodPost, "titles/history", map[string]string{"title": title}, &resp)
	return resp.Items, err
}

func (c *Client) TitleHistory(ctx context.Context) ([]string, error) {
	var resp struct {
		Items []string `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "titles/history", nil, &resp)
	return resp.Items, err
}

// Script returns the outline for title, or for the first locked idea when empty.
func (c *Client) Script(ctx context.Context, title string) (ScriptOutline, error) {
	endpoint := "script"
	if title != "" {
		endpoint += "?title=" + url.QueryEscape(title)
	}
	var resp ScriptOutline
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) Schedule(ctx context.Context) ([]ScheduleEntry, error) {
	var resp struct {
		Items []ScheduleEntry `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "schedule", nil, &resp)
	return resp.Items, err
}

func (c *Client) Workflow(ctx context.Context) ([]WorkflowItem, error) {
	var resp struct {
		Items []WorkflowItem `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "workflow", nil, &resp)
	return resp.Items, err
}

// MovePhase moves a card by delta (1 or -1).
func (c *Client) MovePhase(ctx context.Context, id string, delta int) (MoveResult, error) {
	var resp MoveResult
	err := c.do(ctx, http.MethodPost, c.itemPath(id, "move"), map[string]int{"delta": delta}, &resp)
	return resp, err
}

func (c *Client) ToggleChecklist(ctx context.Context, id, label string) (WorkflowItem, error) {
	var resp WorkflowItem
	err := c.do(ctx, http.MethodPost, c.itemPath(id, "checklist"), map[string]string{"label": label}, &resp)
	return resp, err
}

func (c *Client) UpdateDeadline(ctx context.Context, id, deadline string) (WorkflowItem, error) {
	var resp WorkflowItem
	err := c.do(ctx, http.MethodPut, c.itemPath(id, "deadline"), map[string]string{"deadline": deadline}, &resp)
	return resp, err
}

func (c *Client) Recipes(ctx context.Context) ([]Recipe, error) {
	var resp struct {
		Items []Recipe `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "recipes", nil, &resp)
	return resp.Items, err
}

// Events returns recent events, newest first.
func (c *Client) Events(ctx context.Context, limit int, evtType string) ([]Event, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if evtType != "" {
		q.Set("type", evtType)
	}
	endpoint := "events"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp struct {
		Items []Event `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) itemPath(id, action string) string {
	return fmt.Sprintf("workflow/%s/%s", url.PathEscape(id), action)
}

func (c *Client) base() string {
	basePath := strings.Trim(c.BasePath, "/")
	if basePath == "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + basePath
}
