package domain

// MergePolicy reports whether adding product with customizations c should
// increment existing instead of appending a new line.
type MergePolicy func(existing LineItem, product Product, c *Customizations) bool

// MergeByProductID merges on product id alone; customizations of the later add are dropped.
func MergeByProductID(existing LineItem, product Product, _ *Customizations) bool {
	return existing.Product.ID == product.ID
}

// MergeByProductAndCustomizations keeps differently customised adds on separate lines.
func MergeByProductAndCustomizations(existing LineItem, product Product, c *Customizations) bool {
	return existing.Product.ID == product.ID && existing.Customizations.Equal(c)
}
