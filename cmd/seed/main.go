package main // seed creates the schema and loads the initial Talbot Hotels data

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/talbothotels/backoffice/internal/config"
	"github.com/talbothotels/backoffice/internal/database"
	"github.com/talbothotels/backoffice/internal/model"
	"github.com/talbothotels/backoffice/internal/repository"
	"github.com/talbothotels/backoffice/internal/utils"
)

// ddl creates the three tables the service needs.  Statements use IF NOT
// EXISTS so the seeder can run repeatedly against the same database.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username VARCHAR(50) NOT NULL,
		email VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		full_name VARCHAR(100) NULL,
		role VARCHAR(30) NOT NULL DEFAULT 'HOUSEKEEPER',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		is_superuser TINYINT(1) NOT NULL DEFAULT 0,
		hotel_id BIGINT UNSIGNED NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		token VARCHAR(255) NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		device_info VARCHAR(255) NULL,
		ip_address VARCHAR(45) NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at TIMESTAMP NOT NULL,
		last_used_at TIMESTAMP NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_token (token),
		KEY idx_refresh_tokens_user (user_id, is_active),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS hotels (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(150) NOT NULL,
		location VARCHAR(100) NOT NULL,
		address VARCHAR(255) NULL,
		rooms INT NOT NULL DEFAULT 0,
		manager VARCHAR(100) NULL,
		phone VARCHAR(30) NULL,
		description TEXT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		cuenta_contable VARCHAR(50) NULL,
		presupuesto BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_hotels_name (name),
		UNIQUE KEY uq_hotels_cuenta_contable (cuenta_contable)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

type seedUser struct {
	username string
	email    string
	fullName string
	role     string
}

var staff = []seedUser{
	{"maria.gonzalez", "maria.gonzalez@talbothotels.com", "María González", model.RoleHousekeeper},
	{"carlos.ruiz", "carlos.ruiz@talbothotels.com", "Carlos Ruiz", model.RoleJefeRecepcion},
	{"ana.morales", "ana.morales@talbothotels.com", "Ana Morales", model.RoleGerente},
	{"pedro.silva", "pedro.silva@talbothotels.com", "Pedro Silva", model.RoleController},
	{"laura.diaz", "laura.diaz@talbothotels.com", "Laura Díaz", model.RoleAdminBodega},
	{"roberto.vega", "roberto.vega@talbothotels.com", "Roberto Vega", model.RoleHousekeeper},
	{"jose.ramirez", "jose.ramirez@talbothotels.com", "José Ramírez", model.RoleGerente},
	{"carmen.torres", "carmen.torres@talbothotels.com", "Carmen Torres", model.RoleJefeRecepcion},
	{"francisco.lopez", "francisco.lopez@talbothotels.com", "Francisco López", model.RoleAdminBodega},
	{"monica.herrera", "monica.herrera@talbothotels.com", "Mónica Herrera", model.RoleHousekeeper},
}

var fleet = []model.Hotel{
	{Name: "Talbot Hotels Corporativo", Location: "Santiago", Address: "El Bosque Norte #0440", Rooms: 120, Manager: "Administrador", Phone: "+56 2 2345 6789", Description: "Hotel corporativo Talbot en Santiago"},
	{Name: "Hyatt Centric Las Condes Santiago", Location: "Santiago", Address: "Enrique Foster 30", Rooms: 85, Manager: "Administrador", Phone: "+56 2 2345 6790", Description: "Hotel Hyatt Centric en Las Condes"},
	{Name: "Holiday Inn Aeropuerto Terminal Santiago", Location: "Santiago", Address: "Armando Cortinez Norte #2150", Rooms: 95, Manager: "Administrador", Phone: "+56 2 2345 6791", Description: "Holiday Inn cerca del aeropuerto de Santiago"},
	{Name: "Holiday Inn Express Las Condes Santiago", Location: "Santiago", Address: "Av. Vitacura #2929", Rooms: 110, Manager: "Administrador", Phone: "+56 2 2345 6792", Description: "Holiday Inn Express en Las Condes"},
	{Name: "Holiday Inn Express Concepción", Location: "Concepción", Address: "San Andrés #38", Rooms: 75, Manager: "Administrador", Phone: "+56 41 224 0000", Description: "Holiday Inn Express en Concepción"},
	{Name: "Holiday Inn Express Temuco", Location: "Temuco", Address: "Av. Ortega #01800", Rooms: 90, Manager: "Administrador", Phone: "+56 45 221 2000", Description: "Holiday Inn Express en Temuco"},
	{Name: "Holiday Inn Express Iquique", Location: "Iquique", Address: "Av. Arturo Prat #1690", Rooms: 65, Manager: "Administrador", Phone: "+56 57 241 0000", Description: "Holiday Inn Express en Iquique"},
	{Name: "Holiday Inn Express Antofagasta", Location: "Antofagasta", Address: "Av. Grecia #1490", Rooms: 80, Manager: "Administrador", Phone: "+56 55 245 8000", Description: "Holiday Inn Express en Antofagasta"},
	{Name: "Holiday Inn Express Valparaíso", Location: "Valparaíso", Address: "Av. Brasil #1532", Rooms: 70, Manager: "Administrador", Phone: "+56 32 225 4000", Description: "Holiday Inn Express en el puerto de Valparaíso"},
	{Name: "Holiday Inn Express La Serena", Location: "La Serena", Address: "Av. Francisco de Aguirre #170", Rooms: 85, Manager: "Administrador", Phone: "+56 51 221 8000", Description: "Holiday Inn Express en La Serena, cerca de las playas"},
	{Name: "Holiday Inn Express Puerto Montt", Location: "Puerto Montt", Address: "Av. Presidente Ibáñez #1462", Rooms: 95, Manager: "Administrador", Phone: "+56 65 225 6000", Description: "Holiday Inn Express en Puerto Montt, puerta de entrada a la Patagonia"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeMin) * time.Minute,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("schema: %v", err)
		}
	}
	log.Println("schema ready")

	users := repository.NewUserRepo(db)
	hotels := repository.NewHotelRepo(db)

	seedAdmin(ctx, cfg, users)
	seedStaff(ctx, cfg, users)
	seedFleet(ctx, hotels)

	log.Println("seed complete")
}

// seedAdmin creates the bootstrap administrator account once.  The default
// password must be changed after the first login.
func seedAdmin(ctx context.Context, cfg config.Config, users *repository.UserRepo) {
	exists, err := users.ExistsUsername(ctx, "admin")
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if exists {
		log.Println("admin already exists")
		return
	}
	hash, err := utils.HashPassword("admin123", cfg.BcryptCost)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	admin := &model.User{
		Username:     "admin",
		Email:        "admin@talbothotels.cl",
		PasswordHash: hash,
		FullName:     "Administrador",
		Role:         model.RoleAdministrador,
		IsActive:     true,
		IsSuperuser:  true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Println("admin created (username=admin password=admin123, change it after first login)")
}

func seedStaff(ctx context.Context, cfg config.Config, users *repository.UserRepo) {
	hash, err := utils.HashPassword("password123", cfg.BcryptCost)
	if err != nil {
		log.Fatalf("seed staff: %v", err)
	}
	for _, s := range staff {
		exists, err := users.ExistsUsername(ctx, s.username)
		if err != nil {
			log.Fatalf("seed staff %s: %v", s.username, err)
		}
		if exists {
			log.Printf("user already exists: %s", s.username)
			continue
		}
		u := &model.User{
			Username:     s.username,
			Email:        s.email,
			PasswordHash: hash,
			FullName:     s.fullName,
			Role:         s.role,
			IsActive:     true,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed staff %s: %v", s.username, err)
		}
		log.Printf("user created: %s (%s)", s.username, s.role)
	}
}

func seedFleet(ctx context.Context, hotels *repository.HotelRepo) {
	for i := range fleet {
		h := fleet[i]
		h.Status = model.HotelStatusActive
		h.IsActive = true
		if _, err := hotels.GetByName(ctx, h.Name); err == nil {
			log.Printf("hotel already exists: %s", h.Name)
			continue
		} else if err != repository.ErrHotelNotFound {
			log.Fatalf("seed hotel %s: %v", h.Name, err)
		}
		if err := hotels.Create(ctx, &h); err != nil {
			log.Fatalf("seed hotel %s: %v", h.Name, err)
		}
		log.Printf("hotel created: %s", h.Name)
	}
}
