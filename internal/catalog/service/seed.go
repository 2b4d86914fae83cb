package service

import (
	"github.com/nahomjim91/spice-marketplace/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

func seedProduct(id, name, category string, price int64, weight, region string) domain.UpsertRequest {
	return domain.UpsertRequest{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.NewFromInt(price),
		Weight:   weight,
		Region:   region,
	}
}

// launchProducts is the storefront's opening assortment.
var launchProducts = []domain.UpsertRequest{
	seedProduct("berbere-asmara", "Asmara Highland Berbere", "berbere", 48, "250g", "Central Highlands"),
	seedProduct("berbere-gondar", "Single-Origin Berbere", "berbere", 45, "250g", "Gondar Region"),
	seedProduct("red-sea-blend", "Red Sea Spice Fusion", "spice-blends", 52, "200g", "Massawa Port"),
	seedProduct("berbere-aged", "Aged Berbere Reserve", "berbere", 85, "200g", "Tigray Mountains"),
	seedProduct("desert-survival-blend", "Gash-Barka Desert Blend", "spice-blends", 55, "180g", "Gash-Barka Plains"),
	seedProduct("korarima", "Wild Korarima Pods", "rare-spices", 75, "100g", "Kaffa Forest"),
	seedProduct("eritrean-coffee-blend", "Eritrean Highland Coffee", "coffee-tea", 58, "500g", "Asmara Highlands"),
	seedProduct("berbere-mild", "Mild Family Berbere", "berbere", 35, "300g", "Amhara Province"),
	seedProduct("eritrean-highland-honey", "Eritrean Highland Honey", "honey-condiments", 45, "400g", "Central Highlands"),
	seedProduct("shero-yellow", "Organic Yellow Split Pea Flour", "shero", 25, "500g", "Shewa Province"),
	seedProduct("berbere-pasta-sauce", "Eritrean Berbere Pasta Sauce", "condiments", 28, "350g", "Asmara Urban"),
	seedProduct("berbere-chef", "Chef's Special Blend", "berbere", 60, "250g", "Multi-region blend"),
	seedProduct("yirgacheffe-coffee", "Single-Origin Yirgacheffe", "coffee-tea", 65, "500g", "Yirgacheffe"),
	seedProduct("eritrean-heritage-collection", "Eritrean Heritage Collection", "gifts", 165, "Multi-item set", "Multi-regional collection"),
	seedProduct("forest-honey", "Wild Forest Honey", "honey-condiments", 40, "350g", "Kaffa Forest"),
	seedProduct("heritage-collection", "Heritage Spice Collection", "gifts", 185, "Multi-item set", "Multi-regional collection"),
}
