package schema

// UserColumns is the default layout for records served by the users API.
func UserColumns() []ColumnSpec {
	return []ColumnSpec{
		Group("Personal Info",
			Leaf("id", "id"),
			Leaf("Name", "name"),
			Leaf("User Name", "username"),
			Leaf("Email", "email"),
			Leaf("Phone", "phone"),
			Leaf("Website", "website"),
		),
		Group("Address",
			Leaf("Street", "address.street"),
			Leaf("Suite", "address.suite"),
			Leaf("City", "address.city"),
			Leaf("ZipCode", "address.zipcode"),
			Leaf("Geo.Lat", "address.geo.lat"),
			Leaf("Geo.Lng", "address.geo.lng"),
		),
		Group("Company",
			Leaf("Name", "company.name"),
			Leaf("Catch Phrase", "company.catchPhrase"),
			Leaf("Bs", "company.bs"),
		),
	}
}
