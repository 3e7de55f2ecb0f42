package models

import (
	"encoding/json"
	"time"
)

// Module keys the shell knows how to render.
const (
	ModuleDashboard  = "dashboard"
	ModuleProduction = "production"
	ModuleInventory  = "inventory"
	ModuleAccounting = "accounting"
	ModuleSettings   = "settings"
)

// SystemModule is a togglable feature area stored in system_modules.
type SystemModule struct {
	ID              string          `json:"id"`
	ModuleKey       string          `json:"module_key"`
	ModuleName      string          `json:"module_name"`
	Description     *string         `json:"description,omitempty"`
	IsEnabled       bool            `json:"is_enabled"`
	RequiresModules []string        `json:"requires_modules"`
	Config          json.RawMessage `json:"config,omitempty"`
	Icon            string          `json:"icon"`
	SortOrder       int             `json:"sort_order"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

// IconVariant resolves the stored icon name against the known icon set.
func (m SystemModule) IconVariant() Icon {
	return ParseIcon(m.Icon)
}

// NavigationEntry is a sidebar item derived from an enabled module.
type NavigationEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Icon Icon   `json:"icon"`
}

// EnabledOnly keeps the enabled modules, preserving their order.
func EnabledOnly(modules []SystemModule) []SystemModule {
	enabled := make([]SystemModule, 0, len(modules))
	for _, m := range modules {
		if m.IsEnabled {
			enabled = append(enabled, m)
		}
	}
	return enabled
}
