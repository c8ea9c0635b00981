package gateway

import "github.com/rail44/roster/internal/row"

// DefaultNewUser is the record posted by "Add User" when no payload is configured.
func DefaultNewUser() row.Row {
	return row.Row{
		"id":       11,
		"name":     "Clementina DuBuque",
		"username": "Moriah.Stanton",
		"email":    "Rey.Padberg@karina.biz",
		"address": map[string]any{
			"street":  "Kattie Turnpike",
			"suite":   "Suite 198",
			"city":    "Lebsackbury",
			"zipcode": "31428-2261",
			"geo": map[string]any{
				"lat": "-38.2386",
				"lng": "57.2232",
			},
		},
		"phone":   "024-648-3804",
		"website": "ambrose.net",
		"company": map[string]any{
			"name":        "Hoeger LLC",
			"catchPhrase": "Centralized empowering task-force",
			"bs":          "target end-to-end models",
		},
	}
}

// DefaultModifyName is the name sent by "Modify User" when none is configured.
const DefaultModifyName = "Pepito"
