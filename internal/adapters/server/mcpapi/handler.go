// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/agenda/internal/adapters/server/common"
	"github.com/hylla/agenda/internal/domain"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the agenda tools.
func NewHandler(cfg Config, agenda common.AgendaService) (*Handler, error) {
	if agenda == nil {
		return nil, fmt.Errorf("agenda service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerReadTools(mcpSrv, agenda)
	registerWriteTools(mcpSrv, agenda)
	registerOrderTools(mcpSrv, agenda)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "agenda"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerReadTools registers workshop and agenda read tools.
func registerReadTools(srv *mcpserver.MCPServer, agenda common.AgendaService) {
	srv.AddTool(
		mcp.NewTool(
			"agenda.list_workshops",
			mcp.WithDescription("List workshops with their date and pathway context."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workshops, err := agenda.ListWorkshops(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_workshops", map[string]any{"workshops": workshops})
		},
	)
	srv.AddTool(
		mcp.NewTool(
			"agenda.list_items",
			mcp.WithDescription("List one workshop's agenda items in order."),
			mcp.WithString("workshop_id", mcp.Required(), mcp.Description("Workshop identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workshopID, err := req.RequireString("workshop_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			items, err := agenda.ListAgendaItems(ctx, workshopID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_items", common.AgendaListResponse{AgendaItems: items})
		},
	)
}

// registerWriteTools registers create, update and delete tools.
func registerWriteTools(srv *mcpserver.MCPServer, agenda common.AgendaService) {
	activityTypes := make([]string, 0, len(domain.ActivityTypes()))
	for _, t := range domain.ActivityTypes() {
		activityTypes = append(activityTypes, string(t))
	}

	srv.AddTool(
		mcp.NewTool(
			"agenda.create_item",
			mcp.WithDescription("Append one agenda item to a workshop."),
			mcp.WithString("workshop_id", mcp.Required(), mcp.Description("Workshop identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Item title")),
			mcp.WithString("activity_type", mcp.Required(), mcp.Description("Activity type"), mcp.Enum(activityTypes...)),
			mcp.WithString("start_time", mcp.Required(), mcp.Description("Start time, HH:MM")),
			mcp.WithString("end_time", mcp.Required(), mcp.Description("End time, HH:MM")),
			mcp.WithString("description", mcp.Description("Markdown description")),
			mcp.WithString("facilitator_name", mcp.Description("Facilitator display name")),
			mcp.WithArray("materials_needed", mcp.Description("Materials list"), mcp.WithStringItems()),
			mcp.WithString("notes", mcp.Description("Facilitator notes")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workshopID, err := req.RequireString("workshop_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			item, err := agenda.CreateAgendaItem(ctx, common.CreateAgendaItemRequest{
				WorkshopID:      workshopID,
				Title:           title,
				ActivityType:    req.GetString("activity_type", ""),
				StartTime:       req.GetString("start_time", ""),
				EndTime:         req.GetString("end_time", ""),
				Description:     req.GetString("description", ""),
				FacilitatorName: req.GetString("facilitator_name", ""),
				MaterialsNeeded: req.GetStringSlice("materials_needed", nil),
				Notes:           req.GetString("notes", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("create_item", item)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.update_item",
			mcp.WithDescription("Update fields of one agenda item. Omitted fields are unchanged."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Agenda item identifier")),
			mcp.WithString("title", mcp.Description("Item title")),
			mcp.WithString("activity_type", mcp.Description("Activity type"), mcp.Enum(activityTypes...)),
			mcp.WithString("start_time", mcp.Description("Start time, HH:MM")),
			mcp.WithString("end_time", mcp.Description("End time, HH:MM")),
			mcp.WithString("description", mcp.Description("Markdown description")),
			mcp.WithString("facilitator_name", mcp.Description("Facilitator display name")),
			mcp.WithString("notes", mcp.Description("Facilitator notes")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			args := req.GetArguments()
			optional := func(key string) *string {
				if _, ok := args[key]; !ok {
					return nil
				}
				v := req.GetString(key, "")
				return &v
			}
			item, err := agenda.UpdateAgendaItem(ctx, id, common.UpdateAgendaItemRequest{
				Title:           optional("title"),
				ActivityType:    optional("activity_type"),
				StartTime:       optional("start_time"),
				EndTime:         optional("end_time"),
				Description:     optional("description"),
				FacilitatorName: optional("facilitator_name"),
				Notes:           optional("notes"),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("update_item", item)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.delete_item",
			mcp.WithDescription("Delete one agenda item."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Agenda item identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := agenda.DeleteAgendaItem(ctx, id); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("delete_item", map[string]any{"deleted": id})
		},
	)
}

// registerOrderTools registers full reorder and single-move tools.
func registerOrderTools(srv *mcpserver.MCPServer, agenda common.AgendaService) {
	srv.AddTool(
		mcp.NewTool(
			"agenda.reorder_items",
			mcp.WithDescription("Replace a workshop's full agenda order. List every item id once, first to last."),
			mcp.WithString("workshop_id", mcp.Required(), mcp.Description("Workshop identifier")),
			mcp.WithArray("ordered_ids", mcp.Required(), mcp.Description("Every agenda item id in the new order"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workshopID, err := req.RequireString("workshop_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			ids, err := req.RequireStringSlice("ordered_ids")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			entries := make([]common.OrderEntry, 0, len(ids))
			for i, id := range ids {
				entries = append(entries, common.OrderEntry{ID: id, OrderIndex: i + 1})
			}
			if err := agenda.ReorderAgendaItems(ctx, workshopID, entries); err != nil {
				return toolResultFromError(err), nil
			}
			items, err := agenda.ListAgendaItems(ctx, workshopID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("reorder_items", common.AgendaListResponse{AgendaItems: items})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"agenda.move_item",
			mcp.WithDescription("Move one agenda item to a 1-based position."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Agenda item identifier")),
			mcp.WithNumber("order_index", mcp.Required(), mcp.Description("Destination position, 1..n")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			orderIndex, err := req.RequireInt("order_index")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := agenda.SetAgendaItemOrder(ctx, id, orderIndex); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_item", map[string]any{"id": id, "order_index": orderIndex})
		},
	)
}

// jsonResult encodes one structured tool result.
func jsonResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidReorder):
		return mcp.NewToolResultError("invalid_reorder: " + err.Error())
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
