package account

import (
	"strings"

	"storefront-service/internal/models"
)

// Seeded demo credentials. A real deployment replaces this lookup with an
// authentication service.
const seedPassword = "demo123"

var seedUsers = []models.User{
	{
		ID:    "1",
		Name:  "Demo User",
		Email: "demo@vamifoods.com",
		Phone: "+91 9876543210",
		Addresses: []models.Address{
			{
				ID:           "1",
				Name:         "Demo User",
				Phone:        "+91 9876543210",
				AddressLine1: "123 Main Street",
				AddressLine2: "Near Charminar",
				City:         "Hyderabad",
				State:        "Telangana",
				Pincode:      "500001",
				IsDefault:    true,
			},
		},
		Wishlist: []string{"palli-chekkalu", "mixture", "mango-pickle"},
		Orders: []models.Order{
			{
				ID:     "ORD001",
				Date:   "2024-01-15",
				Status: models.OrderStatusDelivered,
				Items: []models.OrderLine{
					{
						ProductID:   "palli-chekkalu",
						ProductName: "PALLI CHEKKALU",
						Variant:     "250g",
						Quantity:    2,
						Price:       180,
					},
				},
				Total: 360,
				Address: models.Address{
					ID:           "1",
					Name:         "Demo User",
					Phone:        "+91 9876543210",
					AddressLine1: "123 Main Street",
					AddressLine2: "Near Charminar",
					City:         "Hyderabad",
					State:        "Telangana",
					Pincode:      "500001",
					IsDefault:    true,
				},
				PaymentMethod:  "UPI",
				TrackingNumber: "VF123456789",
			},
		},
	},
}

func findSeedUser(email string) *models.User {
	needle := strings.ToLower(strings.TrimSpace(email))
	for i := range seedUsers {
		if strings.ToLower(seedUsers[i].Email) == needle {
			return &seedUsers[i]
		}
	}
	return nil
}
