package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/cncf/landscape2/go/explorer/pkg/loader"
	"github.com/cncf/landscape2/go/explorer/pkg/urlcodec"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the explorer as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, argv []string) error {
		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		return newMCPServer(s, os.Stdout, cfg.FetchTimeout).serve(cmd.Context(), os.Stdin)
	},
}

// JSON-RPC structures -------------------------------------------------------

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

type jsonRPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Server state --------------------------------------------------------------

// serverState tracks the first catalog load. Tool calls wait for it.
type serverState struct {
	once    sync.Once
	ready   chan struct{}
	mu      sync.RWMutex
	loadErr error
}

func newServerState() *serverState {
	return &serverState{ready: make(chan struct{})}
}

func (s *serverState) setLoaded(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loadErr = err
		close(s.ready)
	})
}

func (s *serverState) waitLoaded(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

type toolDefinition struct {
	Name        string
	Description string
	Properties  map[string]interface{}
	Required    []string
}

var advertisedTools = []toolDefinition{
	{
		Name:        "query_items",
		Description: "Filter the landscape and classify the admitted items. Returns per-group counts, the menu and the grid or card projection.",
		Properties: map[string]interface{}{
			"query":          stringProperty("Explorer view state as a URL query string, e.g. maturity=foundation&license=oss"),
			"group":          stringProperty("Group to select; defaults to the first group"),
			"view":           stringProperty("grid or card"),
			"classify":       stringProperty("Card classification: none, category, maturity or tag"),
			"sort":           stringProperty("Card sort field: name, stars, contributors, funding or date"),
			"sort_direction": stringProperty("asc or desc"),
		},
	},
	{
		Name:        "list_facets",
		Description: "List the filter options, classify dimensions and sort fields available in a group.",
		Properties: map[string]interface{}{
			"group": stringProperty("Group name; defaults to the first group"),
		},
	},
	{
		Name:        "search_items",
		Description: "Search landscape items by name, description and repository topics.",
		Properties: map[string]interface{}{
			"text": stringProperty("Text to search for"),
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results to return (default: 20)",
			},
		},
		Required: []string{"text"},
	},
	{
		Name:        "get_item",
		Description: "Get the details of a landscape item by id.",
		Properties: map[string]interface{}{
			"id": stringProperty("Item id"),
		},
		Required: []string{"id"},
	},
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func (def toolDefinition) inputSchema() map[string]interface{} {
	schema := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           def.Properties,
	}
	if len(def.Required) > 0 {
		schema["required"] = def.Required
	}
	return schema
}

// Server --------------------------------------------------------------------

type mcpServer struct {
	session *session
	state   *serverState
	// timeout bounds each tool call, including a tier fetch it triggers.
	timeout time.Duration

	outputMu sync.Mutex
	out      io.Writer
}

func newMCPServer(s *session, out io.Writer, timeout time.Duration) *mcpServer {
	return &mcpServer{session: s, state: newServerState(), timeout: timeout, out: out}
}

// serve loads the catalog in the background and answers one JSON-RPC
// request per input line until in is exhausted.
func (m *mcpServer) serve(ctx context.Context, in io.Reader) error {
	log := klog.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	loaded := make(chan struct{})
	defer func() {
		cancel()
		<-loaded
	}()

	go func() {
		defer close(loaded)
		idx, err := m.session.loader.Ensure(ctx, loader.Base)
		if err != nil {
			log.Error(err, "error loading catalog")
			m.sendNotification("notifications/serverReady", map[string]interface{}{"error": err.Error()})
		} else {
			log.Info("catalog loaded", "items", len(idx.Entries()))
			m.sendNotification("notifications/serverReady", map[string]interface{}{})
		}
		m.state.setLoaded(err)
	}()

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			log.Error(err, "unable to parse JSON-RPC request")
			continue
		}

		if resp := m.handleRequest(ctx, &req); resp != nil {
			m.writeResponse(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}

func (m *mcpServer) handleRequest(ctx context.Context, req *jsonRPCRequest) *jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return &jsonRPCResponse{
			JSONRPC: "2.0",
			Result: mustJSON(map[string]interface{}{
				"protocolVersion": "2024-11-05",
				"capabilities": map[string]interface{}{
					"tools": map[string]interface{}{},
				},
				"serverInfo": map[string]string{
					"name":    "landscape-explorer",
					"version": "0.1.0",
				},
			}),
			ID: req.ID,
		}
	case "notifications/initialized":
		return nil
	case "tools/list":
		tools := make([]map[string]interface{}, 0, len(advertisedTools))
		for _, def := range advertisedTools {
			tools = append(tools, map[string]interface{}{
				"name":        def.Name,
				"description": def.Description,
				"inputSchema": def.inputSchema(),
			})
		}
		return &jsonRPCResponse{
			JSONRPC: "2.0",
			Result:  mustJSON(map[string]interface{}{"tools": tools}),
			ID:      req.ID,
		}
	case "tools/call":
		return m.handleToolsCall(ctx, req)
	default:
		return errorResponse(req.ID, -32601, "Method not found", nil)
	}
}

func (m *mcpServer) handleToolsCall(ctx context.Context, req *jsonRPCRequest) *jsonRPCResponse {
	var payload struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &payload); err != nil {
		return errorResponse(req.ID, -32602, "Invalid params", nil)
	}

	var call func(context.Context, json.RawMessage) (interface{}, error)
	switch payload.Name {
	case "query_items":
		call = m.queryItems
	case "list_facets":
		call = m.listFacets
	case "search_items":
		call = m.searchItems
	case "get_item":
		call = m.getItem
	default:
		return errorResponse(req.ID, -32601, "Tool not found", nil)
	}

	if err := m.state.waitLoaded(ctx); err != nil {
		return errorResponse(req.ID, -32603, "Catalog unavailable", mustJSON(map[string]string{"error": err.Error()}))
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	result, err := call(ctx, payload.Arguments)
	var argErr *argumentError
	switch {
	case errors.As(err, &argErr):
		return errorResponse(req.ID, -32602, argErr.Error(), nil)
	case err != nil:
		return errorResponse(req.ID, -32000, err.Error(), nil)
	}

	text, err := json.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, -32603, err.Error(), nil)
	}
	return &jsonRPCResponse{
		JSONRPC: "2.0",
		Result:  mustJSON(map[string]interface{}{"content": []map[string]string{{"type": "text", "text": string(text)}}}),
		ID:      req.ID,
	}
}

type argumentError struct {
	msg string
}

func (e *argumentError) Error() string {
	return e.msg
}

func decodeArguments(raw json.RawMessage, args interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, args); err != nil {
		return &argumentError{msg: "Invalid arguments"}
	}
	return nil
}

func (m *mcpServer) queryItems(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Query         string `json:"query"`
		Group         string `json:"group"`
		View          string `json:"view"`
		Classify      string `json:"classify"`
		Sort          string `json:"sort"`
		SortDirection string `json:"sort_direction"`
	}
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	q, err := buildQuery(args.Query, map[string]string{
		urlcodec.ParamGroup:         args.Group,
		urlcodec.ParamView:          args.View,
		urlcodec.ParamClassify:      args.Classify,
		urlcodec.ParamSort:          args.Sort,
		urlcodec.ParamSortDirection: args.SortDirection,
	})
	if err != nil {
		return nil, &argumentError{msg: err.Error()}
	}
	return m.session.query(ctx, q)
}

func (m *mcpServer) listFacets(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Group string `json:"group"`
	}
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	return m.session.listFacets(ctx, args.Group)
}

func (m *mcpServer) searchItems(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Text  string `json:"text"`
		Limit int    `json:"limit"`
	}
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Text) == "" {
		return nil, &argumentError{msg: "text parameter is required"}
	}
	return m.session.search(ctx, args.Text, args.Limit)
}

func (m *mcpServer) getItem(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		ID string `json:"id"`
	}
	if err := decodeArguments(raw, &args); err != nil {
		return nil, err
	}
	if args.ID == "" {
		return nil, &argumentError{msg: "id parameter is required"}
	}
	return m.session.item(ctx, args.ID)
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func (m *mcpServer) writeResponse(resp *jsonRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		klog.Background().Error(err, "unable to marshal response")
		return
	}
	m.writeLine(data)
}

func (m *mcpServer) sendNotification(method string, params interface{}) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
	}
	if params != nil {
		payload["params"] = params
	}

	data, err := json.Marshal(payload)
	if err != nil {
		klog.Background().Error(err, "unable to marshal notification", "method", method)
		return
	}
	m.writeLine(data)
}

func (m *mcpServer) writeLine(data []byte) {
	m.outputMu.Lock()
	defer m.outputMu.Unlock()
	if _, err := m.out.Write(append(data, '\n')); err != nil {
		klog.Background().Error(err, "unable to write output")
	}
}

func errorResponse(id json.RawMessage, code int, message string, data json.RawMessage) *jsonRPCResponse {
	return &jsonRPCResponse{
		JSONRPC: "2.0",
		Error: &jsonRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}
