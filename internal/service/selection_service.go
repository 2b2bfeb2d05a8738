package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/dinnerpicker/internal/metrics"
	"github.com/mmynk/dinnerpicker/internal/middleware"
	"github.com/mmynk/dinnerpicker/internal/models"
	"github.com/mmynk/dinnerpicker/internal/selection"
	"github.com/mmynk/dinnerpicker/pkg/api"
	"github.com/mmynk/dinnerpicker/pkg/api/apiconnect"
)

var _ apiconnect.SelectionServiceHandler = (*SelectionService)(nil)

// SelectionService implements the Connect SelectionService.
type SelectionService struct {
	selections *selection.Service
	metrics    *metrics.Metrics
}

// NewSelectionService creates a SelectionService over the core selection
// service. m may be nil when metrics are disabled.
func NewSelectionService(selections *selection.Service, m *metrics.Metrics) *SelectionService {
	return &SelectionService{selections: selections, metrics: m}
}

// SaveSelection records one person's choice for a day.
func (s *SelectionService) SaveSelection(ctx context.Context, req *connect.Request[api.SaveSelectionRequest]) (*connect.Response[api.SaveSelectionResponse], error) {
	date, err := s.selections.ResolveDate(req.Msg.Date)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Debug("SaveSelection request",
		"request_id", middleware.GetRequestID(ctx),
		"date", date,
		"person", req.Msg.Person,
		"starter", req.Msg.Starter,
		"main", req.Msg.Main,
	)

	sel, err := s.selections.SaveSelection(ctx, date, req.Msg.Person, req.Msg.Starter, req.Msg.Main)
	if err != nil {
		slog.Warn("SaveSelection failed", "date", date, "person", req.Msg.Person, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.SelectionSaved(sel.Starter != nil, sel.Main != nil)

	return connect.NewResponse(&api.SaveSelectionResponse{Success: true, Date: date}), nil
}

// GetSelections returns everyone's choice for a day.
func (s *SelectionService) GetSelections(ctx context.Context, req *connect.Request[api.GetSelectionsRequest]) (*connect.Response[api.GetSelectionsResponse], error) {
	date, err := s.selections.ResolveDate(req.Msg.Date)
	if err != nil {
		return nil, toConnectError(err)
	}

	day, err := s.selections.GetSelectionsForDate(ctx, date)
	if err != nil {
		slog.Error("GetSelections failed", "date", date, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetSelectionsResponse{
		Date:       date,
		Selections: toAPISelections(day),
	}), nil
}

// GetSummary returns per-dish counts for a day.
func (s *SelectionService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	date, err := s.selections.ResolveDate(req.Msg.Date)
	if err != nil {
		return nil, toConnectError(err)
	}

	summary, err := s.selections.GetSelectionSummary(ctx, date)
	if err != nil {
		slog.Error("GetSummary failed", "date", date, "error", err)
		return nil, toConnectError(err)
	}

	slog.Debug("Summary computed",
		"date", date,
		"people", len(summary.Individual),
		"starters", summary.Starters,
		"mains", summary.Mains,
	)

	return connect.NewResponse(&api.GetSummaryResponse{
		Date:       summary.Date,
		Individual: toAPISelections(summary.Individual),
		Starters:   summary.Starters,
		Mains:      summary.Mains,
	}), nil
}

// ResetSelections deletes every choice for a day.
func (s *SelectionService) ResetSelections(ctx context.Context, req *connect.Request[api.ResetSelectionsRequest]) (*connect.Response[api.ResetSelectionsResponse], error) {
	date, err := s.selections.ResolveDate(req.Msg.Date)
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.selections.ClearSelectionsForDate(ctx, date); err != nil {
		slog.Error("ResetSelections failed", "date", date, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.SelectionsReset()

	slog.Info("Selections reset", "date", date, "request_id", middleware.GetRequestID(ctx))
	return connect.NewResponse(&api.ResetSelectionsResponse{Success: true, Date: date}), nil
}

func toAPISelections(day models.DaySelections) map[string]api.Selection {
	out := make(map[string]api.Selection, len(day))
	for person, sel := range day {
		if sel == nil {
			continue
		}
		out[person] = api.Selection{
			Starter:   sel.Starter,
			Main:      sel.Main,
			UpdatedAt: sel.UpdatedAt,
		}
	}
	return out
}
