package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/dinnerpicker/internal/menu"
	"github.com/mmynk/dinnerpicker/pkg/api"
	"github.com/mmynk/dinnerpicker/pkg/api/apiconnect"
)

var _ apiconnect.MenuServiceHandler = (*MenuService)(nil)

// MenuService implements the Connect MenuService.
type MenuService struct {
	menus *menu.Provider
}

// NewMenuService creates a MenuService backed by menus.
func NewMenuService(menus *menu.Provider) *MenuService {
	return &MenuService{menus: menus}
}

// GetMenu returns both courses in the best matching language. With no lang
// in the request the Accept-Language header is used.
func (s *MenuService) GetMenu(ctx context.Context, req *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error) {
	lang := req.Msg.Lang
	if lang == "" {
		lang = req.Header().Get("Accept-Language")
	}
	lang = s.menus.Resolve(lang)

	return connect.NewResponse(&api.GetMenuResponse{
		Lang:      lang,
		Languages: s.menus.Languages(),
		Starters:  toAPIItems(s.menus.List(menu.Starters, lang)),
		Mains:     toAPIItems(s.menus.List(menu.Mains, lang)),
	}), nil
}

func toAPIItems(items []menu.Item) []api.MenuItem {
	out := make([]api.MenuItem, len(items))
	for i, item := range items {
		out[i] = api.MenuItem{ID: item.ID, Name: item.Name}
	}
	return out
}
