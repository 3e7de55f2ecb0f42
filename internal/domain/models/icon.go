package models

// Icon is the closed set of navigation symbols the dashboard knows how to draw.
// Names follow the lucide icon set stored in system_modules.icon.
type Icon string

const (
	IconCircle          Icon = "Circle"
	IconLayoutDashboard Icon = "LayoutDashboard"
	IconEgg             Icon = "Egg"
	IconPackage         Icon = "Package"
	IconCalculator      Icon = "Calculator"
	IconShoppingCart    Icon = "ShoppingCart"
	IconTruck           Icon = "Truck"
	IconUsers           Icon = "Users"
	IconBarChart        Icon = "BarChart3"
	IconFileText        Icon = "FileText"
	IconSettings        Icon = "Settings"
)

var knownIcons = map[Icon]struct{}{
	IconCircle:          {},
	IconLayoutDashboard: {},
	IconEgg:             {},
	IconPackage:         {},
	IconCalculator:      {},
	IconShoppingCart:    {},
	IconTruck:           {},
	IconUsers:           {},
	IconBarChart:        {},
	IconFileText:        {},
	IconSettings:        {},
}

// ParseIcon maps a stored icon name to a known Icon, falling back to IconCircle.
func ParseIcon(name string) Icon {
	if _, ok := knownIcons[Icon(name)]; ok {
		return Icon(name)
	}
	return IconCircle
}
