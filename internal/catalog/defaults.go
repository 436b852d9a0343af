package catalog

import "github.com/ctgpost/MarketingWebTools/internal/domain"

// DefaultProducts is the showroom catalog used when no database is configured.
// Keep in sync with internal/repository/migrations.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Jamdani Saree", Category: "Saree", Price: "৳4500", Image: "https://images.unsplash.com/photo-1610030469983-98e550d6193c?w=600"},
		{ID: 2, Name: "Cotton Three-Piece", Category: "Three-Piece", Price: "৳1800", Image: "https://images.unsplash.com/photo-1583391733956-6c78276477e2?w=600"},
		{ID: 3, Name: "Embroidered Kurti", Category: "Kurti", Price: "৳1200", Image: "https://images.unsplash.com/photo-1617627143750-d86bc21e42bb?w=600"},
		{ID: 4, Name: "Silk Katan Saree", Category: "Saree", Price: "৳6500", Image: "https://images.unsplash.com/photo-1594463750939-ebb28c3f7f75?w=600"},
		{ID: 5, Name: "Georgette Three-Piece", Category: "Three-Piece", Price: "৳2500", Image: "https://images.unsplash.com/photo-1605763240000-7e93b172d754?w=600"},
		{ID: 6, Name: "Printed Kurti", Category: "Kurti", Price: "৳950", Image: "https://images.unsplash.com/photo-1598554747436-c9293d6a588f?w=600"},
		{ID: 7, Name: "Chiffon Hijab", Category: "Hijab", Price: "৳500", Image: "https://images.unsplash.com/photo-1585487000160-6ebcfceb0d03?w=600"},
		{ID: 8, Name: "Party Gown", Category: "Gown", Price: "৳5200", Image: "https://images.unsplash.com/photo-1566174053879-31528523f8ae?w=600"},
	}
}
