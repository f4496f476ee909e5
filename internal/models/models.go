package models

// All lists every table in migration order.
func All() []any {
	return []any{
		&Role{},
		&User{},
		&ShippingAddress{},
		&Size{},
		&Category{},
		&Product{},
		&ProductVariant{},
		&Order{},
		&OrderDetail{},
		&AuditLog{},
	}
}
