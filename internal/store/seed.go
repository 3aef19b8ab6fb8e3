package store

import "github.com/SyedMohathaseem/noon-opticals-website/internal/domain"

const imageBase = "https://images.unsplash.com/"

func DefaultProducts() []domain.Product {
	product := func(id int64, name, category, brand string, price, oldPrice int64, img string, discount int, tags []string, stock int, description string) domain.Product {
		return domain.Product{
			ID:          domain.IntID(id),
			Name:        name,
			Category:    category,
			Brand:       brand,
			Price:       price,
			OldPrice:    oldPrice,
			Image:       imageBase + img + "?q=80&w=2070&auto=format&fit=crop",
			Discount:    discount,
			Tags:        tags,
			InStock:     stock > 0,
			Stock:       stock,
			Rating:      4.5,
			ReviewCount: 128,
			Description: description,
		}
	}

	return []domain.Product{
		product(1, "Neon Vision", "Sport", "noon", 3499, 4299, "photo-1577803645773-f96470509666", 18, []string{"UV400", "Polarized"}, 45, "High-performance sport eyewear with UV400 protection"),
		product(2, "Crystal Clear", "Reading", "noon", 2299, 2899, "photo-1511499767150-a48a237f0083", 20, []string{"Blue-Light", "Anti-Glare"}, 62, "Perfect for reading with blue light protection"),
		product(3, "Golden Hour", "Sun", "rayban", 4199, 5299, "photo-1473496169904-658ba7c44d8a", 20, []string{"UV400", "Polarized"}, 0, "Stylish sunglasses for those golden hour moments"),
		product(4, "Urban Tech", "Blue Light", "oakley", 2699, 3499, "photo-1591076482161-42ce6da69f67", 22, []string{"Blue-Light", "Anti-Glare"}, 34, "Modern eyewear for digital lifestyle"),
		product(5, "Classic Aviator", "Sun", "rayban", 3899, 4899, "photo-1572635196237-14b3f281503f", 20, []string{"UV400", "Polarized"}, 52, "Timeless aviator design with premium lenses"),
		product(6, "Retro Round", "Fashion", "vogue", 2999, 3899, "photo-1574258495973-f010dfbb5371", 23, []string{"Vintage", "Anti-Glare"}, 28, "Vintage inspired round frames"),
		product(7, "Smart Vision", "Blue Light", "titan", 2899, 3599, "photo-1583394838336-acd977736f90", 19, []string{"Blue-Light", "Anti-Glare"}, 75, "Smart protection for your eyes"),
		product(8, "Elite Pro", "Sport", "oakley", 4899, 5999, "photo-1509695507497-903c140c43b0", 18, []string{"UV400", "Polarized"}, 40, "Professional grade sports eyewear"),
		product(9, "Midnight Matte", "Fashion", "carrera", 3199, 3799, "photo-1542293787938-4d36399c31d7", 16, []string{"Matte", "Featherlight"}, 55, "Sleek matte finish for modern look"),
		product(10, "Aurora Blue", "Blue Light", "noon", 2799, 3399, "photo-1582719478250-c89cae4dc85b", 18, []string{"Blue-Light", "Anti-Glare"}, 90, "Premium blue light filtering glasses"),
		product(11, "Desert Trail", "Sport", "oakley", 4599, 5499, "photo-1524504388940-b1c1722653e1", 16, []string{"UV400", "Impact-Resist"}, 35, "Adventure-ready sports eyewear"),
		product(12, "Scholar Pro", "Reading", "titan", 2499, 3099, "photo-1522938974444-f12497b69347", 19, []string{"Blue-Light", "Comfort Fit"}, 80, "Comfortable reading glasses for long hours"),
	}
}

func DefaultOrders() []domain.Order {
	order := func(id, date string, customer domain.OrderCustomer, productID int64, name string, qty int, price int64, payment domain.PaymentStatus, status domain.OrderStatus, address string) domain.Order {
		return domain.Order{
			ID:       id,
			Date:     date,
			Customer: customer,
			Lines:    []domain.OrderLine{{ProductID: domain.IntID(productID), Name: name, Quantity: qty, Price: price}},
			Amount:   int64(qty) * price,
			Payment:  payment,
			Status:   status,
			Address:  address,
		}
	}

	return []domain.Order{
		order("ORD-2024-001", "2024-12-30", domain.OrderCustomer{Name: "Rahul Kumar", Email: "rahul@email.com", Phone: "+91 98765 43210", Initials: "RK"}, 1, "Neon Vision", 1, 3499, domain.PaymentPaid, domain.OrderDelivered, "123 Main St, Mumbai"),
		order("ORD-2024-002", "2024-12-30", domain.OrderCustomer{Name: "Priya Sharma", Email: "priya@email.com", Phone: "+91 87654 32109", Initials: "PS"}, 5, "Classic Aviator", 1, 3899, domain.PaymentPaid, domain.OrderProcessing, "456 Oak Ave, Delhi"),
		order("ORD-2024-003", "2024-12-29", domain.OrderCustomer{Name: "Amit Mehta", Email: "amit@email.com", Phone: "+91 76543 21098", Initials: "AM"}, 2, "Crystal Clear", 2, 2299, domain.PaymentPending, domain.OrderPending, "789 Pine Rd, Bangalore"),
		order("ORD-2024-004", "2024-12-29", domain.OrderCustomer{Name: "Neha Singh", Email: "neha@email.com", Phone: "+91 65432 10987", Initials: "NS"}, 7, "Smart Vision", 1, 2899, domain.PaymentPaid, domain.OrderShipped, "321 Elm St, Chennai"),
		order("ORD-2024-005", "2024-12-28", domain.OrderCustomer{Name: "Vijay Gupta", Email: "vijay@email.com", Phone: "+91 54321 09876", Initials: "VG"}, 9, "Midnight Matte", 1, 3199, domain.PaymentPaid, domain.OrderDelivered, "654 Maple Dr, Pune"),
		order("ORD-2024-006", "2024-12-28", domain.OrderCustomer{Name: "Sneha Patel", Email: "sneha@email.com", Phone: "+91 43210 98765", Initials: "SP"}, 6, "Retro Round", 1, 2999, domain.PaymentPaid, domain.OrderDelivered, "987 Cedar Ln, Ahmedabad"),
	}
}

func DefaultCustomers() []domain.Customer {
	return []domain.Customer{
		{ID: domain.IntID(1), Name: "Rahul Kumar", Email: "rahul@email.com", Phone: "+91 98765 43210", Orders: 5, Spent: 42500, Status: domain.CustomerActive, JoinDate: "2024-01-15"},
		{ID: domain.IntID(2), Name: "Priya Sharma", Email: "priya@email.com", Phone: "+91 87654 32109", Orders: 3, Spent: 28000, Status: domain.CustomerActive, JoinDate: "2024-02-20"},
		{ID: domain.IntID(3), Name: "Amit Mehta", Email: "amit@email.com", Phone: "+91 76543 21098", Orders: 8, Spent: 65000, Status: domain.CustomerVIP, JoinDate: "2023-11-10"},
		{ID: domain.IntID(4), Name: "Neha Singh", Email: "neha@email.com", Phone: "+91 65432 10987", Orders: 2, Spent: 12500, Status: domain.CustomerActive, JoinDate: "2024-06-05"},
		{ID: domain.IntID(5), Name: "Vijay Gupta", Email: "vijay@email.com", Phone: "+91 54321 09876", Orders: 12, Spent: 125000, Status: domain.CustomerVIP, JoinDate: "2023-08-22"},
	}
}

func DefaultAppointments() []domain.Appointment {
	return []domain.Appointment{
		{ID: domain.IntID(1), Date: "2026-01-04", Time: "10:00 AM", Duration: "30 min", Type: "Eye Examination", Customer: "Rahul Verma", Phone: "+91 98765 43210", Email: "rahul.v@email.com", Status: domain.AppointmentConfirmed, Notes: "First time visitor"},
		{ID: domain.IntID(2), Date: "2026-01-04", Time: "11:30 AM", Duration: "45 min", Type: "Lens Fitting", Customer: "Sneha Patel", Phone: "+91 87654 32109", Email: "sneha.p@email.com", Status: domain.AppointmentPending, Notes: "Progressive lenses"},
		{ID: domain.IntID(3), Date: "2026-01-04", Time: "02:00 PM", Duration: "30 min", Type: "Contact Lens Trial", Customer: "Arjun Reddy", Phone: "+91 76543 21098", Email: "arjun.r@email.com", Status: domain.AppointmentConfirmed},
		{ID: domain.IntID(4), Date: "2026-01-05", Time: "03:30 PM", Duration: "60 min", Type: "Full Checkup", Customer: "Meera Iyer", Phone: "+91 65432 10987", Email: "meera.i@email.com", Status: domain.AppointmentConfirmed, Notes: "Annual checkup"},
		{ID: domain.IntID(5), Date: "2026-01-05", Time: "05:00 PM", Duration: "30 min", Type: "Eye Examination", Customer: "Kiran Kumar", Phone: "+91 54321 09876", Email: "kiran.k@email.com", Status: domain.AppointmentPending},
	}
}
