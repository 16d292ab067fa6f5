package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// applicationSortColumns maps the accepted order_by values onto credit_applications columns.
var applicationSortColumns = map[string]string{
	"created_at":         "created_at",
	"updated_at":         "updated_at",
	"application_date":   "application_date",
	"application_number": "application_number",
	"amount_requested":   "amount_requested",
	"status_date":        "status_date",
	"status_code":        "status_code",
}

const defaultApplicationSort = "created_at"

// applicationOrder turns a listing filter's order into a quoted ORDER BY clause.
// Unknown or empty fields sort by created_at; anything other than "asc" sorts descending.
// id breaks ties so pages stay stable.
func applicationOrder(field, dir string) clause.OrderBy {
	column, ok := applicationSortColumns[strings.TrimSpace(field)]
	if !ok {
		column = defaultApplicationSort
	}
	desc := !strings.EqualFold(strings.TrimSpace(dir), "asc")
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}
