package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mkowalska/anime-security-training/game/dialogue"
	"github.com/mkowalska/anime-security-training/game/world"
)

// moveHold is how long a move tool call keeps the direction pressed
// before releasing it, in simulation time.
const moveHold = 250 * time.Millisecond

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Anime Security Training World",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Anime Security Training World - MCP Interface

This is a thin client that proxies all requests to the REST API server.

WORLD OVERVIEW:
A top-down town where you walk between NPCs, readable books, and
buildings. Talking to an NPC opens a dialogue; some dialogues launch
security quizzes (phishing, passwords, links, MFA) that award points
and letter grades. Walking into a glowing doorway and pressing
interact moves you to another map.

AVAILABLE TOOLS:
- world_state: Get the current world snapshot
- move: Walk in a direction for a short hold
- interact: Press E (talk / read / enter door, whichever is prompted)
- confirm: Press Enter (advance dialogue, answer quiz question)
- cancel: Press Esc (close dialogue/book, or exit to menu)
- menu: Move the selection cursor up or down
- new_game / save_game / load_game: Slot management
- list_maps: List authored map content

TIP: Check world_state after each action. The "prompt" field tells you
what interact would do right now; the "session" field is set while a
dialogue, book, or quiz is open.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "world_state",
		Description: "Get the current world snapshot: map, player position, active prompt, open dialogue or quiz, and training progress",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleWorldState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Walk in a direction. The direction is held briefly and released; call repeatedly to cover distance.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to walk",
				},
				"hold_ms": map[string]interface{}{
					"type":        "integer",
					"description": "How long to hold the direction in milliseconds (default 250, max 2000)",
				},
			},
			Required: []string{"direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "interact",
		Description: "Press the interact key. Talks to the nearest NPC, reads the nearest book, or enters the nearest doorway, whichever the current prompt offers.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInteract)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "confirm",
		Description: "Press confirm. Advances dialogue, picks the selected choice, or submits the selected quiz answer.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleConfirm)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel",
		Description: "Press cancel. Closes the open dialogue or book; while exploring, requests exit to the menu (autosaves).",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleCancel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "menu",
		Description: "Move the selection cursor in an open dialogue or quiz",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down"},
					"description": "Cursor direction",
				},
			},
			Required: []string{"direction"},
		},
	}, c.handleMenu)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a fresh game on the city map",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_game",
		Description: "Save the current world state to a slot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"slot": map[string]interface{}{
					"type":        "string",
					"description": "Slot name (default slot1)",
				},
			},
		},
	}, c.handleSaveGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "load_game",
		Description: "Restore the world from a save slot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"slot": map[string]interface{}{
					"type":        "string",
					"description": "Slot name (default slot1)",
				},
			},
		},
	}, c.handleLoadGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List the authored map content files on the server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMaps)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// sendIntent posts one intent and returns the world state after the
// simulation has had a tick to process it.
func (c *Client) sendIntent(in world.Intent) (*world.RenderSnapshot, error) {
	if err := c.apiCall("POST", "/api/intent", in, nil); err != nil {
		return nil, err
	}

	// Give the fixed-rate loop a couple of ticks to consume the press.
	time.Sleep(50 * time.Millisecond)

	var snap world.RenderSnapshot
	if err := c.apiCall("GET", "/api/state", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Tool handlers

func (c *Client) handleWorldState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var snap world.RenderSnapshot
	err := c.apiCall("GET", "/api/state", nil, &snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	direction, _ := args["direction"].(string)

	hold := moveHold
	if ms, ok := args["hold_ms"].(float64); ok && ms > 0 {
		hold = time.Duration(ms) * time.Millisecond
		if hold > 2*time.Second {
			hold = 2 * time.Second
		}
	}

	var in world.Intent
	switch direction {
	case "up":
		in.Up = true
	case "down":
		in.Down = true
	case "left":
		in.Left = true
	case "right":
		in.Right = true
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown direction %q", direction)), nil
	}

	if err := c.apiCall("POST", "/api/intent", in, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	time.Sleep(hold)

	// Release the direction and read the resulting state.
	snap, err := c.sendIntent(world.Intent{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (c *Client) handleInteract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := c.sendIntent(world.Intent{Interact: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (c *Client) handleConfirm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := c.sendIntent(world.Intent{Confirm: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (c *Client) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := c.sendIntent(world.Intent{Cancel: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (c *Client) handleMenu(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	direction, _ := args["direction"].(string)

	var in world.Intent
	switch direction {
	case "up":
		in.MenuUp = true
	case "down":
		in.MenuDown = true
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown direction %q", direction)), nil
	}

	snap, err := c.sendIntent(in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var snap world.RenderSnapshot
	err := c.apiCall("POST", "/api/game/new", nil, &snap)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Started a new game.\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	slot, _ := args["slot"].(string)

	body := map[string]string{}
	if slot != "" {
		body["slot"] = slot
	}

	if err := c.apiCall("POST", "/api/game/save", body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if slot == "" {
		slot = "slot1"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved to %s.", slot)), nil
}

func (c *Client) handleLoadGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	slot, _ := args["slot"].(string)

	body := map[string]string{}
	if slot != "" {
		body["slot"] = slot
	}

	var snap world.RenderSnapshot
	if err := c.apiCall("POST", "/api/game/load", body, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Loaded.\n\n" + formatSnapshot(&snap)), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int      `json:"count"`
		Maps  []string `json:"maps"`
	}

	err := c.apiCall("GET", "/api/maps", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Map content files (%d):\n", response.Count)
	for _, id := range response.Maps {
		result += fmt.Sprintf("- %s\n", id)
	}
	result += "\nIds without a content file resolve to generated fallback maps."

	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatSnapshot(snap *world.RenderSnapshot) string {
	if snap == nil {
		return "No world state available"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Map: %s | Position: (%.0f,%.0f) | Zoom: %.1f | State: %s\n",
		snap.MapID, snap.Player.X, snap.Player.Y, snap.Zoom, snap.State))

	if snap.Prompt != "" {
		b.WriteString(fmt.Sprintf("Prompt: %s\n", snap.Prompt))
	}

	if snap.Session != nil {
		b.WriteString("\n")
		b.WriteString(formatSession(snap.Session))
	}

	if p := snap.Progress; p != nil {
		b.WriteString(fmt.Sprintf("\nScore: %d total", p.Scores["total"]))
		for _, cat := range []string{"phishing", "password", "links", "mfa"} {
			if v := p.Scores[cat]; v > 0 {
				b.WriteString(fmt.Sprintf(" | %s: %d", cat, v))
			}
		}
		b.WriteString("\n")
		if len(p.Completed) > 0 {
			b.WriteString(fmt.Sprintf("Completed challenges: %s\n", strings.Join(p.Completed, ", ")))
		}
		if len(p.Trust) > 0 {
			var parts []string
			for npc, v := range p.Trust {
				parts = append(parts, fmt.Sprintf("%s %+d", npc, v))
			}
			b.WriteString(fmt.Sprintf("Trust: %s\n", strings.Join(parts, ", ")))
		}
	}

	return b.String()
}

func formatSession(v *dialogue.View) string {
	var b strings.Builder

	switch v.Mode {
	case "dialogue":
		b.WriteString(fmt.Sprintf("[Dialogue] %s: %s\n", v.Speaker, v.Text))
		for i, choice := range v.Choices {
			marker := "  "
			if i == v.Selected {
				marker = "> "
			}
			b.WriteString(fmt.Sprintf("%s%d. %s\n", marker, i+1, choice))
		}
		if len(v.Choices) == 0 {
			b.WriteString("(confirm to continue, cancel to close)\n")
		}

	case "info":
		b.WriteString(fmt.Sprintf("[Book] %s\n%s\n(confirm or cancel to close)\n", v.Title, v.Text))

	case "challenge":
		q := v.Question
		if q == nil {
			break
		}
		b.WriteString(fmt.Sprintf("[Quiz] %s - question %d/%d (score %d/%d)\n%s\n",
			v.Title, q.Index, q.Total, q.Points, q.MaxPoints, q.Prompt))
		for i, choice := range q.Choices {
			marker := "  "
			if i == q.Selected {
				marker = "> "
			}
			b.WriteString(fmt.Sprintf("%s%d. %s\n", marker, i+1, choice))
		}
		if q.ShowingFeedback {
			verdict := "Wrong."
			if q.LastCorrect {
				verdict = "Correct!"
			}
			b.WriteString(fmt.Sprintf("%s %s\n(confirm to continue)\n", verdict, q.Explanation))
		}

	case "results":
		r := v.Results
		if r == nil {
			break
		}
		b.WriteString(fmt.Sprintf("[Results] %s: grade %s (%d/%d points)\n(confirm to close)\n",
			r.Title, r.Grade, r.Points, r.MaxPoints))
	}

	return b.String()
}
