// Package api defines the request and response messages of the dinner.v1
// Connect services. Messages are encoded as JSON; see package apiconnect.
package api

import "time"

// Selection is one person's choice as seen by clients. Nil means not chosen.
type Selection struct {
	Starter   *string   `json:"starter"`
	Main      *string   `json:"main"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveSelectionRequest records a choice. An empty Date means today.
// Empty or "no-selection" dishes are treated as not chosen.
type SaveSelectionRequest struct {
	Date    string `json:"date,omitempty"`
	Person  string `json:"person"`
	Starter string `json:"starter,omitempty"`
	Main    string `json:"main,omitempty"`
}

type SaveSelectionResponse struct {
	Success bool   `json:"success"`
	Date    string `json:"date"`
}

type GetSelectionsRequest struct {
	Date string `json:"date,omitempty"`
}

type GetSelectionsResponse struct {
	Date       string               `json:"date"`
	Selections map[string]Selection `json:"selections"`
}

type GetSummaryRequest struct {
	Date string `json:"date,omitempty"`
}

type GetSummaryResponse struct {
	Date       string               `json:"date"`
	Individual map[string]Selection `json:"individual"`
	Starters   map[string]int       `json:"starters"`
	Mains      map[string]int       `json:"mains"`
}

type ResetSelectionsRequest struct {
	Date string `json:"date,omitempty"`
}

type ResetSelectionsResponse struct {
	Success bool   `json:"success"`
	Date    string `json:"date"`
}

// MenuItem is a dish with its display name in the resolved language.
type MenuItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GetMenuRequest asks for the menu in Lang, a language tag or
// Accept-Language value. Empty means the default language.
type GetMenuRequest struct {
	Lang string `json:"lang,omitempty"`
}

type GetMenuResponse struct {
	Lang      string     `json:"lang"`
	Languages []string   `json:"languages"`
	Starters  []MenuItem `json:"starters"`
	Mains     []MenuItem `json:"mains"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}
