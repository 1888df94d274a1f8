package catalog

import "github.com/Skotchmaster/product_dashboard/internal/models"

// Seed returns the catalog used when the storage slot holds nothing usable.
func Seed() []models.Product {
	return []models.Product{
		{ID: 1, Name: "CakeZone Walnut Brownie", Type: "Food", Stock: 200, MRP: 2000, SellingPrice: 2000, Brand: "CakeZone", ReturnEligible: models.Yes, IsPublished: true},
		{ID: 2, Name: "CakeZone Choco Fudge Brownie", Type: "Food", Stock: 200, MRP: 23, SellingPrice: 80, Brand: "CakeZone", ReturnEligible: models.Yes, IsPublished: true},
		{ID: 3, Name: "Theobroma Christmas Cake", Type: "Food", Stock: 200, MRP: 23, SellingPrice: 80, Brand: "CakeZone", ReturnEligible: models.Yes, IsPublished: true},
	}
}
