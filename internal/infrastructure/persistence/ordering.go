package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// productSortColumns maps the sort keys a filter may name to product columns
var productSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"category":   "category",
	"created_at": "created_at",
}

// ordering is a resolved ORDER BY. Unknown keys fall back to the default
// column and anything but "asc" sorts descending. Rows are always tied by id
// so pages stay stable.
type ordering struct {
	column string
	desc   bool
}

func resolveOrdering(key, dir string, columns map[string]string, fallback string) ordering {
	column, ok := columns[strings.TrimSpace(key)]
	if !ok {
		column = fallback
	}
	return ordering{
		column: column,
		desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}

func (o ordering) clause() clause.OrderBy {
	cols := []clause.OrderByColumn{{Column: clause.Column{Name: o.column}, Desc: o.desc}}
	if o.column != "id" {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: o.desc})
	}
	return clause.OrderBy{Columns: cols}
}
