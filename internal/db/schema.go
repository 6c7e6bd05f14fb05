package db

import "database/sql"

// EnsureSchema creates all tables when missing. Statements are idempotent
// so startup can run them unconditionally.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(100) NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'customer',
			status VARCHAR(50) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS cars (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			owner_id BIGINT NOT NULL,
			brand VARCHAR(100) NOT NULL,
			model VARCHAR(100) NOT NULL,
			year INT NOT NULL DEFAULT 0,
			plate_number VARCHAR(50) NOT NULL DEFAULT '',
			price_per_day BIGINT NOT NULL DEFAULT 0,
			available TINYINT(1) NOT NULL DEFAULT 1,
			unavailability_reason VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_cars_owner (owner_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS drivers (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			rating DECIMAL(3,2) NOT NULL DEFAULT 0,
			experience INT NOT NULL DEFAULT 0,
			available TINYINT(1) NOT NULL DEFAULT 1,
			active TINYINT(1) NOT NULL DEFAULT 1,
			service_options VARCHAR(255) NOT NULL DEFAULT '',
			latitude DOUBLE NULL,
			longitude DOUBLE NULL,
			located_at TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_drivers_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			car_id BIGINT NULL,
			driver_id BIGINT NULL,
			customer_id BIGINT NOT NULL,
			manager_id BIGINT NULL,
			booking_type VARCHAR(50) NOT NULL,
			pickup_location VARCHAR(255) NOT NULL DEFAULT '',
			dropoff_location VARCHAR(255) NOT NULL DEFAULT '',
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			base_price BIGINT NOT NULL DEFAULT 0,
			tax_amount BIGINT NOT NULL DEFAULT 0,
			total_price BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			payment_status VARCHAR(50) NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(50) NOT NULL DEFAULT '',
			transaction_id VARCHAR(100) NOT NULL DEFAULT '',
			invoice_number VARCHAR(100) NOT NULL DEFAULT '',
			cancellation_reason VARCHAR(255) NOT NULL DEFAULT '',
			driver_lat DOUBLE NULL,
			driver_lng DOUBLE NULL,
			driver_located_at TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_bookings_customer (customer_id),
			KEY idx_bookings_car (car_id),
			KEY idx_bookings_driver (driver_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS booking_extras (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			booking_id BIGINT NOT NULL,
			extra_id VARCHAR(100) NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			price BIGINT NOT NULL DEFAULT 0,
			KEY idx_extras_booking (booking_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS car_reservations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			car_id BIGINT NOT NULL,
			booking_id BIGINT NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			UNIQUE KEY uniq_reservation (car_id, booking_id),
			KEY idx_reservations_car (car_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS invoices (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			invoice_number VARCHAR(100) NOT NULL,
			booking_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			subtotal BIGINT NOT NULL DEFAULT 0,
			tax BIGINT NOT NULL DEFAULT 0,
			total BIGINT NOT NULL DEFAULT 0,
			paid_amount BIGINT NOT NULL DEFAULT 0,
			remaining_amount BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(50) NOT NULL DEFAULT 'issued',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_invoice_number (invoice_number),
			KEY idx_invoices_booking (booking_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS invoice_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			description VARCHAR(255) NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			unit_price BIGINT NOT NULL DEFAULT 0,
			amount BIGINT NOT NULL DEFAULT 0,
			KEY idx_items_invoice (invoice_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS payments (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			booking_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			amount BIGINT NOT NULL DEFAULT 0,
			method VARCHAR(50) NOT NULL DEFAULT '',
			transaction_id VARCHAR(100) NOT NULL,
			provider VARCHAR(50) NOT NULL DEFAULT '',
			status VARCHAR(50) NOT NULL DEFAULT 'completed',
			refund_reason VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_payment_tx (transaction_id),
			KEY idx_payments_invoice (invoice_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS payment_references (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			tx_ref VARCHAR(100) NOT NULL,
			booking_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			amount BIGINT NOT NULL DEFAULT 0,
			method VARCHAR(50) NOT NULL DEFAULT '',
			verified TINYINT(1) NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_tx_ref (tx_ref)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			type VARCHAR(100) NOT NULL DEFAULT '',
			channel VARCHAR(50) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(100) NOT NULL DEFAULT '',
			is_read TINYINT(1) NOT NULL DEFAULT 0,
			processed TINYINT(1) NOT NULL DEFAULT 0,
			processed_at TIMESTAMP NULL,
			delivery_results JSON NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			KEY idx_notifications_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS driver_assignments (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			booking_id BIGINT NOT NULL,
			driver_id BIGINT NOT NULL,
			assigned_by BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_assignment_booking (booking_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS counters (
			name VARCHAR(100) PRIMARY KEY,
			value BIGINT NOT NULL DEFAULT 0
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
