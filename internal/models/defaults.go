package models

// Compiled-in defaults. They populate the caches before anything is loaded,
// stay in place for local-only sessions, and seed an empty remote store.

// DefaultCategories returns the built-in category list.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cafe", Name: "Café", Icon: "☕"},
		{ID: "cold-drinks", Name: "Cold Drinks", Icon: "🧊"},
		{ID: "bakery", Name: "Bakery", Icon: "🥐"},
		{ID: "breakfast", Name: "Breakfast", Icon: "🍳"},
		{ID: "desserts", Name: "Desserts", Icon: "🍰"},
	}
}

// DefaultMenuItems returns the built-in menu. Ids are local placeholders.
func DefaultMenuItems() []MenuItem {
	return []MenuItem{
		{ID: "1", Name: "Espresso", Description: "Double shot of our house blend.", Price: 2.50, Category: "cafe", Available: true},
		{ID: "2", Name: "Cappuccino", Description: "Espresso, steamed milk and a thick layer of foam.", Price: 3.75, Category: "cafe", Available: true, Featured: true},
		{ID: "3", Name: "Caramel Latte", Description: "Latte sweetened with house-made caramel.", Price: 4.25, Category: "cafe", Available: true},
		{ID: "4", Name: "Iced Americano", Description: "Espresso over ice and cold water.", Price: 3.25, Category: "cold-drinks", Available: true},
		{ID: "5", Name: "Strawberry Frappé", Description: "Blended strawberries, milk and ice.", Price: 4.95, Category: "cold-drinks", Available: true, Featured: true},
		{ID: "6", Name: "Butter Croissant", Description: "Baked every morning.", Price: 2.75, Category: "bakery", Available: true},
		{ID: "7", Name: "Cinnamon Roll", Description: "Soft roll with cream cheese frosting.", Price: 3.50, Category: "bakery", Available: true},
		{ID: "8", Name: "Avocado Toast", Description: "Sourdough, smashed avocado, poached egg.", Price: 7.90, Category: "breakfast", Available: true, Featured: true},
		{ID: "9", Name: "Pancake Stack", Description: "Three pancakes with maple syrup and berries.", Price: 6.50, Category: "breakfast", Available: true},
		{ID: "10", Name: "Cheesecake", Description: "New York style with red berry coulis.", Price: 4.75, Category: "desserts", Available: true},
	}
}

// DefaultConfig returns the built-in business profile.
func DefaultConfig() BusinessConfig {
	return BusinessConfig{
		Name:          "Corner Café",
		Slogan:        "Good coffee, slow mornings",
		AdminPassword: DefaultAdminPassword,
		Description:   "A neighbourhood café serving specialty coffee, fresh pastries and all-day breakfast.",
		AboutUs:       "We opened our doors to give the neighbourhood a place to slow down.\n\nEverything on the menu is made in-house, every day.",
		Phone:         "+1 (555) 123-4567",
		Email:         "hello@cornercafe.example",
		Address:       "123 Main Street",
		Schedule: Schedule{
			Weekdays: "Mon - Fri: 7:00 - 20:00",
			Weekends: "Sat - Sun: 8:00 - 21:00",
		},
		Header: HeaderConfig{
			BgColor:   "#ffffff",
			TextColor: "#44403c",
			Style:     HeaderGlass,
		},
	}
}
