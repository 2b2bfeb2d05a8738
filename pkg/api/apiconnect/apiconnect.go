// Package apiconnect wires the dinner.v1 services to Connect handlers and
// clients. Messages are plain structs from package api, carried as JSON.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/dinnerpicker/pkg/api"
)

const (
	SelectionServiceName = "dinner.v1.SelectionService"
	MenuServiceName      = "dinner.v1.MenuService"
	AuthServiceName      = "dinner.v1.AuthService"
)

// Fully-qualified procedure paths.
const (
	SelectionServiceSaveSelectionProcedure   = "/dinner.v1.SelectionService/SaveSelection"
	SelectionServiceGetSelectionsProcedure   = "/dinner.v1.SelectionService/GetSelections"
	SelectionServiceGetSummaryProcedure      = "/dinner.v1.SelectionService/GetSummary"
	SelectionServiceResetSelectionsProcedure = "/dinner.v1.SelectionService/ResetSelections"
	MenuServiceGetMenuProcedure              = "/dinner.v1.MenuService/GetMenu"
	AuthServiceLoginProcedure                = "/dinner.v1.AuthService/Login"
)

// SelectionServiceHandler is implemented by the selection RPC service.
type SelectionServiceHandler interface {
	SaveSelection(context.Context, *connect.Request[api.SaveSelectionRequest]) (*connect.Response[api.SaveSelectionResponse], error)
	GetSelections(context.Context, *connect.Request[api.GetSelectionsRequest]) (*connect.Response[api.GetSelectionsResponse], error)
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error)
	ResetSelections(context.Context, *connect.Request[api.ResetSelectionsRequest]) (*connect.Response[api.ResetSelectionsResponse], error)
}

// MenuServiceHandler is implemented by the menu RPC service.
type MenuServiceHandler interface {
	GetMenu(context.Context, *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error)
}

// AuthServiceHandler is implemented by the login RPC service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSON()}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSON()}, opts...)
}

// route dispatches by exact procedure path under one service prefix.
func route(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// NewSelectionServiceHandler builds an HTTP handler and the path prefix to
// mount it on.
func NewSelectionServiceHandler(svc SelectionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return "/" + SelectionServiceName + "/", route(map[string]http.Handler{
		SelectionServiceSaveSelectionProcedure:   connect.NewUnaryHandler(SelectionServiceSaveSelectionProcedure, svc.SaveSelection, o...),
		SelectionServiceGetSelectionsProcedure:   connect.NewUnaryHandler(SelectionServiceGetSelectionsProcedure, svc.GetSelections, o...),
		SelectionServiceGetSummaryProcedure:      connect.NewUnaryHandler(SelectionServiceGetSummaryProcedure, svc.GetSummary, o...),
		SelectionServiceResetSelectionsProcedure: connect.NewUnaryHandler(SelectionServiceResetSelectionsProcedure, svc.ResetSelections, o...),
	})
}

// NewMenuServiceHandler builds an HTTP handler and the path prefix to mount it on.
func NewMenuServiceHandler(svc MenuServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return "/" + MenuServiceName + "/", route(map[string]http.Handler{
		MenuServiceGetMenuProcedure: connect.NewUnaryHandler(MenuServiceGetMenuProcedure, svc.GetMenu, o...),
	})
}

// NewAuthServiceHandler builds an HTTP handler and the path prefix to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return "/" + AuthServiceName + "/", route(map[string]http.Handler{
		AuthServiceLoginProcedure: connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, o...),
	})
}

// SelectionServiceClient calls the selection service.
type SelectionServiceClient interface {
	SaveSelection(context.Context, *connect.Request[api.SaveSelectionRequest]) (*connect.Response[api.SaveSelectionResponse], error)
	GetSelections(context.Context, *connect.Request[api.GetSelectionsRequest]) (*connect.Response[api.GetSelectionsResponse], error)
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error)
	ResetSelections(context.Context, *connect.Request[api.ResetSelectionsRequest]) (*connect.Response[api.ResetSelectionsResponse], error)
}

type selectionServiceClient struct {
	save    *connect.Client[api.SaveSelectionRequest, api.SaveSelectionResponse]
	list    *connect.Client[api.GetSelectionsRequest, api.GetSelectionsResponse]
	summary *connect.Client[api.GetSummaryRequest, api.GetSummaryResponse]
	reset   *connect.Client[api.ResetSelectionsRequest, api.ResetSelectionsResponse]
}

// NewSelectionServiceClient creates a client for the service at baseURL.
func NewSelectionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SelectionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	o := clientOptions(opts)
	return &selectionServiceClient{
		save:    connect.NewClient[api.SaveSelectionRequest, api.SaveSelectionResponse](httpClient, baseURL+SelectionServiceSaveSelectionProcedure, o...),
		list:    connect.NewClient[api.GetSelectionsRequest, api.GetSelectionsResponse](httpClient, baseURL+SelectionServiceGetSelectionsProcedure, o...),
		summary: connect.NewClient[api.GetSummaryRequest, api.GetSummaryResponse](httpClient, baseURL+SelectionServiceGetSummaryProcedure, o...),
		reset:   connect.NewClient[api.ResetSelectionsRequest, api.ResetSelectionsResponse](httpClient, baseURL+SelectionServiceResetSelectionsProcedure, o...),
	}
}

func (c *selectionServiceClient) SaveSelection(ctx context.Context, req *connect.Request[api.SaveSelectionRequest]) (*connect.Response[api.SaveSelectionResponse], error) {
	return c.save.CallUnary(ctx, req)
}

func (c *selectionServiceClient) GetSelections(ctx context.Context, req *connect.Request[api.GetSelectionsRequest]) (*connect.Response[api.GetSelectionsResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *selectionServiceClient) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	return c.summary.CallUnary(ctx, req)
}

func (c *selectionServiceClient) ResetSelections(ctx context.Context, req *connect.Request[api.ResetSelectionsRequest]) (*connect.Response[api.ResetSelectionsResponse], error) {
	return c.reset.CallUnary(ctx, req)
}

// MenuServiceClient calls the menu service.
type MenuServiceClient interface {
	GetMenu(context.Context, *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error)
}

type menuServiceClient struct {
	getMenu *connect.Client[api.GetMenuRequest, api.GetMenuResponse]
}

// NewMenuServiceClient creates a client for the service at baseURL.
func NewMenuServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) MenuServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &menuServiceClient{
		getMenu: connect.NewClient[api.GetMenuRequest, api.GetMenuResponse](httpClient, baseURL+MenuServiceGetMenuProcedure, clientOptions(opts)...),
	}
}

func (c *menuServiceClient) GetMenu(ctx context.Context, req *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error) {
	return c.getMenu.CallUnary(ctx, req)
}

// AuthServiceClient calls the login service.
type AuthServiceClient interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
}

type authServiceClient struct {
	login *connect.Client[api.LoginRequest, api.LoginResponse]
}

// NewAuthServiceClient creates a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &authServiceClient{
		login: connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, clientOptions(opts)...),
	}
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}
