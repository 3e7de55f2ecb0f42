package shell

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/service/session"
)

// ErrModuleDisabled is returned for keys outside the enabled module set.
var ErrModuleDisabled = errors.New("module is not enabled")

const (
	settingsTitle     = "Configuración"
	settingsMessage   = "Módulo en desarrollo..."
	comingSoonMessage = "Este módulo estará disponible próximamente."
)

// ViewKind names the renderer the client should mount for a module.
type ViewKind string

const (
	ViewDashboard   ViewKind = "dashboard"
	ViewFlocks      ViewKind = "flocks"
	ViewInventory   ViewKind = "inventory"
	ViewAccounts    ViewKind = "accounts"
	ViewPlaceholder ViewKind = "placeholder"
)

// View is the resolved content for a selected module key.
type View struct {
	Key      string   `json:"key"`
	Kind     ViewKind `json:"kind"`
	Title    string   `json:"title"`
	Resource string   `json:"resource,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// UserSummary is the signed-in user shown under the navigation.
type UserSummary struct {
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
}

// Navigation is the sidebar content.
type Navigation struct {
	Modules []models.NavigationEntry `json:"modules"`
	User    *UserSummary             `json:"user"`
}

// ModuleSource exposes the enabled modules of the last fetch.
type ModuleSource interface {
	EnabledModules() []models.SystemModule
}

// SessionSource exposes the current session state.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// Shell maps module keys to views for the signed-in user.
type Shell struct {
	modules  ModuleSource
	sessions SessionSource
}

// New builds a shell over the module and session stores.
func New(modules ModuleSource, sessions SessionSource) *Shell {
	return &Shell{modules: modules, sessions: sessions}
}

// Navigation lists the enabled modules with their icons, plus the current user.
func (s *Shell) Navigation() Navigation {
	enabled := s.modules.EnabledModules()
	entries := make([]models.NavigationEntry, len(enabled))
	for i, m := range enabled {
		entries[i] = models.NavigationEntry{Key: m.ModuleKey, Name: m.ModuleName, Icon: m.IconVariant()}
	}

	nav := Navigation{Modules: entries}
	snap := s.sessions.Snapshot()
	if snap.User != nil {
		nav.User = &UserSummary{Email: snap.User.Email}
		if snap.Profile != nil {
			nav.User.FullName = snap.Profile.FullName
			nav.User.Role = snap.Profile.Role
		}
	}
	return nav
}

// Resolve returns the view for key, or ErrModuleDisabled when key is not enabled.
func (s *Shell) Resolve(key string) (View, error) {
	var module *models.SystemModule
	for _, m := range s.modules.EnabledModules() {
		if m.ModuleKey == key {
			module = &m
			break
		}
	}
	if module == nil {
		return View{}, fmt.Errorf("resolve %q: %w", key, ErrModuleDisabled)
	}

	switch key {
	case models.ModuleDashboard:
		return View{Key: key, Kind: ViewDashboard, Title: module.ModuleName, Resource: "/api/dashboard"}, nil
	case models.ModuleProduction:
		return View{Key: key, Kind: ViewFlocks, Title: module.ModuleName, Resource: "/api/flocks"}, nil
	case models.ModuleInventory:
		return View{Key: key, Kind: ViewInventory, Title: module.ModuleName, Resource: "/api/inventory"}, nil
	case models.ModuleAccounting:
		return View{Key: key, Kind: ViewAccounts, Title: module.ModuleName, Resource: "/api/accounts"}, nil
	case models.ModuleSettings:
		return View{Key: key, Kind: ViewPlaceholder, Title: settingsTitle, Message: settingsMessage}, nil
	default:
		return View{Key: key, Kind: ViewPlaceholder, Title: capitalize(key), Message: comingSoonMessage}, nil
	}
}

func capitalize(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}
