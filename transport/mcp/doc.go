// Package mcp provides the Model Context Protocol surface of the
// training world.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for walking, interacting, and slot management
//   - Stdio transport mode
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - world_state: Get the current world snapshot
//   - move: Hold a walk direction briefly and report the result
//   - interact: Press the interact key (talk / read / enter)
//   - confirm: Press confirm (advance dialogue, submit answer)
//   - cancel: Press cancel (close session, exit to menu)
//   - menu: Move the selection cursor in an open dialogue or quiz
//   - new_game, save_game, load_game: Slot management
//   - list_maps: List authored map content files
//
// Architecture:
//
// The client is a thin proxy over the REST API: every tool call turns
// into one or two HTTP requests against a running server. The world
// simulation stays on the server at its fixed tick rate; the MCP side
// holds no game state of its own, so an MCP agent and a websocket
// viewer can drive and watch the same world simultaneously.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
