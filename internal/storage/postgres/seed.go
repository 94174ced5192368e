package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"rencar/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Default admin credentials for a fresh database. Change the password after
// first login; the account is only created when no admin exists at all.
const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
	defaultAdminEmail    = "admin@sena-rencar.com"
)

var defaultCars = []models.Car{
	{
		Name:           "Mercedes-Benz E300 AMG",
		Category:       "Executive Sedan",
		Seats:          4,
		Luggage:        3,
		Price:          "1.400K",
		DriverIncluded: true,
		Image:          "/assets/rent-a-car-banner.jpg",
		Highlight:      []string{"Ambient lighting", "Panoramic roof", "Premium sound"},
		Description:    "Pilihan ideal untuk eksekutif dengan kenyamanan maksimum dan privasi tinggi.",
	},
	{
		Name:           "Toyota Alphard Facelift",
		Category:       "Premium MPV",
		Seats:          6,
		Luggage:        5,
		Price:          "1.800K",
		DriverIncluded: true,
		Image:          "/assets/paket-wisata.jpg",
		Highlight:      []string{"Captain seat", "Rear entertainment", "Full leather interior"},
		Description:    "Armada keluarga dan corporate yang menghadirkan ruang lega dan pengalaman eksklusif.",
	},
	{
		Name:           "Toyota Fortuner GR Sport",
		Category:       "SUV Adventure",
		Seats:          6,
		Luggage:        4,
		Price:          "1.250K",
		DriverIncluded: true,
		Image:          "/assets/rent-a-car-banner.jpg",
		Highlight:      []string{"4x4 capability", "Premium safety", "Wireless charger"},
		Description:    "Siap menemani perjalanan luar kota dengan performa bertenaga dan fitur lengkap.",
	},
	{
		Name:           "Toyota Avanza",
		Category:       "Economy MPV",
		Seats:          7,
		Luggage:        3,
		Price:          "350K",
		DriverIncluded: false,
		Image:          "/assets/rent-a-car-banner.jpg",
		Highlight:      []string{"Fuel efficient", "Easy to drive", "Spacious cabin"},
		Description:    "Pilihan ekonomis untuk perjalanan keluarga dengan sistem lepas kunci.",
	},
	{
		Name:           "Honda Brio",
		Category:       "City Car",
		Seats:          4,
		Luggage:        2,
		Price:          "250K",
		DriverIncluded: false,
		Image:          "/assets/rent-a-car-banner.jpg",
		Highlight:      []string{"Compact", "Low fuel consumption", "Easy parking"},
		Description:    "Mobil city car ideal untuk mobilitas dalam kota dengan lepas kunci.",
	},
}

var defaultBanners = []models.Banner{
	{
		Title:       "Rent A Car Banner",
		Channel:     "Homepage Hero",
		Format:      "1920 x 1080",
		URL:         "/assets/rent-a-car-banner.jpg",
		Image:       "/assets/Rent-A-Car-Banner.jpg",
		Tone:        "Luxury & Professional",
		Description: "Banner utama rental mobil premium",
	},
	{
		Title:       "Tour Package Highlight",
		Channel:     "Social Campaign",
		Format:      "1080 x 1350",
		URL:         "/assets/paket-wisata.jpg",
		Image:       "/assets/paket-wisata.jpg",
		Tone:        "Warm & Experiential",
		Description: "Paket wisata kurasi untuk perjalanan tak terlupakan",
	},
}

var defaultPackages = []models.Package{
	{
		Name:        "Bandung Luxury Escape",
		Duration:    "3 Hari 2 Malam",
		Description: "Eksplorasi Bandung dengan pengalaman kuliner premium dan hidden gems eksklusif.",
		Price:       "5.9 Juta",
		Category:    "City Tour",
		Image:       "/assets/paket-wisata.jpg",
		Features:    []string{"Hotel 5★", "Private guide", "Culinary journey"},
	},
	{
		Name:        "Bali Honeymoon Signature",
		Duration:    "4 Hari 3 Malam",
		Description: "Paket bulan madu intim dengan itinerary personal dan dokumentasi profesional.",
		Price:       "12.5 Juta",
		Category:    "Honeymoon",
		Image:       "/assets/paket-wisata.jpg",
		Features:    []string{"Sunset cruise", "Couple spa", "Fine dining"},
	},
	{
		Name:        "Yogyakarta Heritage Journey",
		Duration:    "2 Hari 1 Malam",
		Description: "Meresapi kekayaan budaya klasik dengan akses eksklusif dan storyteller lokal.",
		Price:       "4.2 Juta",
		Category:    "Cultural",
		Image:       "/assets/paket-wisata.jpg",
		Features:    []string{"Sunrise Borobudur", "Royal lunch", "Cultural workshop"},
	},
}

// Bootstrap applies migrations and seeds the default admin and content.
// It runs exactly once, explicitly, from main; a failure means the process
// must not serve requests.
func (r *PostgresRepo) Bootstrap(ctx context.Context, log *slog.Logger) error {
	const op = "storage.postgres.Bootstrap"

	if err := r.applyMigrations(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.ensureDefaultAdmin(ctx, log); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.ensureDefaultContent(ctx, log); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) ensureDefaultAdmin(ctx context.Context, log *slog.Logger) error {
	hasAdmin, err := r.HasAdmin(ctx)
	if err != nil {
		return err
	}

	if hasAdmin {
		log.Debug("admin user already exists")
		return nil
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = r.SaveUser(ctx, models.User{
		Email:    defaultAdminEmail,
		Name:     "Administrator",
		Role:     models.RoleAdmin,
		Username: defaultAdminUsername,
		PassHash: passHash,
	})
	if err != nil {
		return err
	}

	log.Info("default admin user created", slog.String("username", defaultAdminUsername))

	return nil
}

func (r *PostgresRepo) ensureDefaultContent(ctx context.Context, log *slog.Logger) error {
	carCount, err := r.count(ctx, "cars")
	if err != nil {
		return err
	}
	if carCount == 0 {
		for _, car := range defaultCars {
			if _, err := r.CreateCar(ctx, car); err != nil {
				return err
			}
		}
		log.Info("default car data added")
	}

	bannerCount, err := r.count(ctx, "banners")
	if err != nil {
		return err
	}
	if bannerCount == 0 {
		for _, banner := range defaultBanners {
			if _, err := r.CreateBanner(ctx, banner); err != nil {
				return err
			}
		}
		log.Info("default banner data added")
	}

	packageCount, err := r.count(ctx, "packages")
	if err != nil {
		return err
	}
	if packageCount == 0 {
		for _, pkg := range defaultPackages {
			if _, err := r.CreatePackage(ctx, pkg); err != nil {
				return err
			}
		}
		log.Info("default package data added")
	}

	return nil
}

func (r *PostgresRepo) count(ctx context.Context, table string) (int64, error) {
	var n int64

	// table comes from the fixed call sites above, never from input.
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s;`, table)).Scan(&n)

	return n, err
}
