package models

import "time"

// DashboardStats are the four headline figures of the dashboard.
type DashboardStats struct {
	ActiveFlocks        int    `json:"active_flocks" bson:"active_flocks"`
	LowStockItems       int    `json:"low_stock_items" bson:"low_stock_items"`
	AvgProduction       int    `json:"avg_production" bson:"avg_production"`
	AvgLayingPercentage string `json:"avg_laying_percentage" bson:"avg_laying_percentage"`
}

// StockAlert names an inventory item at or below its minimum stock.
type StockAlert struct {
	SKU          string      `json:"sku" bson:"sku"`
	ItemName     string      `json:"item_name" bson:"item_name"`
	CurrentStock float64     `json:"current_stock" bson:"current_stock"`
	MinStock     float64     `json:"min_stock" bson:"min_stock"`
	Status       StockStatus `json:"status" bson:"status"`
}

// DashboardSnapshot is the daily report persisted by the scheduler.
type DashboardSnapshot struct {
	ID        string         `json:"id" bson:"_id"`
	TakenAt   time.Time      `json:"taken_at" bson:"taken_at"`
	Stats     DashboardStats `json:"stats" bson:"stats"`
	Alerts    []StockAlert   `json:"alerts" bson:"alerts"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}
