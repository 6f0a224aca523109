package dataset

import (
	"slices"

	"sales-dashboard/internal/models"
)

var sampleRecords = []models.SalesRecord{
	{Retailer: "Foot Locker", RetailerID: 1185732, InvoiceDate: "2020-01-01", Region: "Northeast", State: "New York", City: "New York", Product: "Men's Street Footwear", PricePerUnit: 50, UnitsSold: 1200, TotalSales: 600000, OperatingProfit: 300000, OperatingMargin: 0.5, SalesMethod: "In-store"},
	{Retailer: "Foot Locker", RetailerID: 1185732, InvoiceDate: "2020-01-02", Region: "Northeast", State: "New York", City: "New York", Product: "Men's Athletic Footwear", PricePerUnit: 50, UnitsSold: 1000, TotalSales: 500000, OperatingProfit: 150000, OperatingMargin: 0.3, SalesMethod: "In-store"},
	{Retailer: "Walmart", RetailerID: 1128299, InvoiceDate: "2020-02-15", Region: "South", State: "Texas", City: "Houston", Product: "Women's Street Footwear", PricePerUnit: 40, UnitsSold: 1000, TotalSales: 400000, OperatingProfit: 140000, OperatingMargin: 0.35, SalesMethod: "Outlet"},
	{Retailer: "Walmart", RetailerID: 1128299, InvoiceDate: "2020-03-10", Region: "South", State: "Texas", City: "Houston", Product: "Women's Athletic Footwear", PricePerUnit: 45, UnitsSold: 850, TotalSales: 382500, OperatingProfit: 133875, OperatingMargin: 0.35, SalesMethod: "Outlet"},
	{Retailer: "Sports Direct", RetailerID: 1197831, InvoiceDate: "2020-04-05", Region: "Southeast", State: "Florida", City: "Miami", Product: "Men's Apparel", PricePerUnit: 60, UnitsSold: 900, TotalSales: 540000, OperatingProfit: 162000, OperatingMargin: 0.3, SalesMethod: "Online"},
	{Retailer: "Sports Direct", RetailerID: 1197831, InvoiceDate: "2020-05-20", Region: "Southeast", State: "Florida", City: "Miami", Product: "Women's Apparel", PricePerUnit: 55, UnitsSold: 1100, TotalSales: 605000, OperatingProfit: 242000, OperatingMargin: 0.4, SalesMethod: "Online"},
	{Retailer: "West Gear", RetailerID: 1128299, InvoiceDate: "2020-06-12", Region: "West", State: "California", City: "San Francisco", Product: "Men's Street Footwear", PricePerUnit: 55, UnitsSold: 1250, TotalSales: 687500, OperatingProfit: 309375, OperatingMargin: 0.45, SalesMethod: "In-store"},
	{Retailer: "West Gear", RetailerID: 1128299, InvoiceDate: "2020-08-30", Region: "West", State: "Washington", City: "Seattle", Product: "Women's Apparel", PricePerUnit: 50, UnitsSold: 700, TotalSales: 350000, OperatingProfit: 122500, OperatingMargin: 0.35, SalesMethod: "Outlet"},
	{Retailer: "Kohl's", RetailerID: 1189833, InvoiceDate: "2020-10-08", Region: "Midwest", State: "Illinois", City: "Chicago", Product: "Men's Athletic Footwear", PricePerUnit: 45, UnitsSold: 600, TotalSales: 270000, OperatingProfit: 94500, OperatingMargin: 0.35, SalesMethod: "Online"},
	{Retailer: "Kohl's", RetailerID: 1189833, InvoiceDate: "2020-12-18", Region: "Midwest", State: "Ohio", City: "Columbus", Product: "Women's Street Footwear", PricePerUnit: 40, UnitsSold: 750, TotalSales: 300000, OperatingProfit: 120000, OperatingMargin: 0.4, SalesMethod: "In-store"},
	{Retailer: "Amazon", RetailerID: 1185732, InvoiceDate: "2021-01-22", Region: "Northeast", State: "Massachusetts", City: "Boston", Product: "Men's Apparel", PricePerUnit: 60, UnitsSold: 500, TotalSales: 300000, OperatingProfit: 105000, OperatingMargin: 0.35, SalesMethod: "Online"},
	{Retailer: "Amazon", RetailerID: 1185732, InvoiceDate: "2021-02-22", Region: "West", State: "California", City: "Los Angeles", Product: "Women's Athletic Footwear", PricePerUnit: 50, UnitsSold: 650, TotalSales: 325000, OperatingProfit: 130000, OperatingMargin: 0.4, SalesMethod: "Online"},
}

// SampleData returns a copy of the bundled dataset used when the real
// source cannot be loaded.
func SampleData() []models.SalesRecord {
	return slices.Clone(sampleRecords)
}
