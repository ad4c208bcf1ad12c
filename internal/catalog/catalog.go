// Package catalog declares the tables replicated between the server and its clients.
package catalog

import "github.com/iudanet/deltasync/internal/models"

// Table names
const (
	TableCategories = "categories"
	TableProducts   = "products"
)

// Categories groups products
var Categories = models.TableSchema{
	Name: TableCategories,
	Columns: []models.Column{
		{Name: "name", Type: models.ColumnText, Required: true},
		{Name: "color", Type: models.ColumnText},
	},
}

// Products is the product catalog
var Products = models.TableSchema{
	Name: TableProducts,
	Columns: []models.Column{
		{Name: "name", Type: models.ColumnText, Required: true},
		{Name: "sku", Type: models.ColumnText},
		{Name: "price_cents", Type: models.ColumnInteger},
		{Name: "quantity", Type: models.ColumnInteger},
		{Name: "category_id", Type: models.ColumnText},
		{Name: "archived", Type: models.ColumnBoolean},
	},
}

// Tables returns every replicated table in registration order
func Tables() []models.TableSchema {
	return []models.TableSchema{Categories, Products}
}
