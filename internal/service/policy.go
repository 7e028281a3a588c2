package service

import "github.com/octobees/rentroom/api/internal/listquery"

// Listing configuration per entity. The sort and filter lists are what
// clients may ask for; the field sets tell the planner how to type them.
var (
	RoomPolicy = listquery.ColumnPolicy{
		SortColumns:   []string{"id", "room_number"},
		FilterColumns: []string{"room_type_id", "status", "price_per_month"},
		PriceRange:    true,
	}
	RoomFields = listquery.EntityFieldSet{
		Identifier: "id",
		Columns: map[string]listquery.ColumnType{
			"id":              listquery.Integer,
			"room_number":     listquery.Text,
			"room_type_id":    listquery.Integer,
			"status":          listquery.SmallInt,
			"price_per_month": listquery.Number,
		},
		Searchable:  []string{"room_number"},
		RangeColumn: "price_per_month",
	}

	RoomTypePolicy = listquery.ColumnPolicy{
		SortColumns: []string{"id", "name"},
	}
	RoomTypeFields = listquery.EntityFieldSet{
		Identifier: "id",
		Columns: map[string]listquery.ColumnType{
			"id":          listquery.Integer,
			"name":        listquery.Text,
			"description": listquery.Text,
		},
		Searchable: []string{"name", "description"},
	}

	TenantPolicy = listquery.ColumnPolicy{
		SortColumns:   []string{"id", "first_name", "last_name"},
		FilterColumns: []string{"gender", "joined_at"},
	}
	TenantFields = listquery.EntityFieldSet{
		Identifier: "id",
		Columns: map[string]listquery.ColumnType{
			"id":           listquery.Integer,
			"first_name":   listquery.Text,
			"last_name":    listquery.Text,
			"email":        listquery.Text,
			"phone_number": listquery.Text,
			"address":      listquery.Text,
			"gender":       listquery.SmallInt,
			"joined_at":    listquery.Date,
		},
		Searchable: []string{"first_name", "last_name", "email", "phone_number", "address"},
	}
)
