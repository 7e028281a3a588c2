package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/octobees/rentroom/api/internal/listquery"
)

func TestListPoliciesMatchFieldSets(t *testing.T) {
	cases := []struct {
		name   string
		policy listquery.ColumnPolicy
		fields listquery.EntityFieldSet
	}{
		{"rooms", RoomPolicy, RoomFields},
		{"room types", RoomTypePolicy, RoomTypeFields},
		{"tenants", TenantPolicy, TenantFields},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, tc.fields.Columns, tc.fields.Identifier, "identifier column")
			for _, col := range tc.policy.SortColumns {
				assert.Contains(t, tc.fields.Columns, col, "sort column")
			}
			for _, col := range tc.policy.FilterColumns {
				assert.Contains(t, tc.fields.Columns, col, "filter column")
			}
			for _, col := range tc.fields.Searchable {
				assert.Contains(t, tc.fields.Columns, col, "searchable column")
			}
			if tc.policy.PriceRange {
				assert.Contains(t, tc.fields.Columns, tc.fields.RangeColumn, "range column")
			} else {
				assert.Empty(t, tc.fields.RangeColumn, "range column without price range")
			}
		})
	}
}
