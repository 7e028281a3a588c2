package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedData is the shape of the embedded fixture file.
type SeedData struct {
	Permissions []struct {
		ID   int    `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"permissions"`
	Roles []struct {
		ID          int      `yaml:"id"`
		Name        string   `yaml:"name"`
		Permissions []string `yaml:"permissions"`
	} `yaml:"roles"`
	Users []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Roles []int  `yaml:"roles"`
	} `yaml:"users"`
	RoomTypes []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"room_types"`
	Rooms []struct {
		RoomNumber    string  `yaml:"room_number"`
		RoomType      string  `yaml:"room_type"`
		PricePerMonth float64 `yaml:"price_per_month"`
		Status        int     `yaml:"status"`
		Description   string  `yaml:"description"`
	} `yaml:"rooms"`
	Tenants []struct {
		FirstName   string `yaml:"first_name"`
		LastName    string `yaml:"last_name"`
		Gender      int    `yaml:"gender"`
		Email       string `yaml:"email"`
		PhoneNumber string `yaml:"phone_number"`
		Address     string `yaml:"address"`
	} `yaml:"tenants"`
	Notifications []struct {
		Email   string `yaml:"email"`
		Message string `yaml:"message"`
		Type    int    `yaml:"type"`
	} `yaml:"notifications"`
}

// LoadSeedData decodes the embedded fixtures.
func LoadSeedData() (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return nil, fmt.Errorf("decode seed data: %w", err)
	}
	return &data, nil
}

// Seed inserts the embedded fixtures, skipping rows that already exist.
// Seeded accounts share password.
func Seed(ctx context.Context, db Execer, password string) error {
	data, err := LoadSeedData()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	for _, p := range data.Permissions {
		if _, err := db.Exec(ctx, `INSERT INTO permissions (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, p.ID, p.Name); err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Name, err)
		}
	}

	for _, r := range data.Roles {
		if _, err := db.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, r.ID, r.Name); err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
		for _, perm := range r.Permissions {
			if _, err := db.Exec(ctx, `
                INSERT INTO role_permission (role_id, permission_id)
                SELECT $1, id FROM permissions WHERE name = $2
                ON CONFLICT DO NOTHING
            `, r.ID, perm); err != nil {
				return fmt.Errorf("seed role %s permission %s: %w", r.Name, perm, err)
			}
		}
	}

	for _, u := range data.Users {
		if _, err := db.Exec(ctx, `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) ON CONFLICT (email) DO NOTHING`, u.Name, u.Email, string(hash)); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		for _, roleID := range u.Roles {
			if _, err := db.Exec(ctx, `
                INSERT INTO user_role (user_id, role_id)
                SELECT id, $2 FROM users WHERE email = $1
                ON CONFLICT DO NOTHING
            `, u.Email, roleID); err != nil {
				return fmt.Errorf("seed user %s role %d: %w", u.Email, roleID, err)
			}
		}
	}

	for _, rt := range data.RoomTypes {
		if _, err := db.Exec(ctx, `INSERT INTO room_types (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, rt.Name, rt.Description); err != nil {
			return fmt.Errorf("seed room type %s: %w", rt.Name, err)
		}
	}

	for _, room := range data.Rooms {
		if _, err := db.Exec(ctx, `
            INSERT INTO rooms (room_number, room_type_id, price_per_month, status, description)
            SELECT $1, id, $3, $4, $5 FROM room_types WHERE name = $2
            ON CONFLICT (room_number) DO NOTHING
        `, room.RoomNumber, room.RoomType, room.PricePerMonth, room.Status, room.Description); err != nil {
			return fmt.Errorf("seed room %s: %w", room.RoomNumber, err)
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, t := range data.Tenants {
		if _, err := db.Exec(ctx, `
            INSERT INTO tenants (first_name, last_name, gender, email, phone_number, address, joined_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            ON CONFLICT DO NOTHING
        `, t.FirstName, t.LastName, t.Gender, t.Email, t.PhoneNumber, t.Address, today); err != nil {
			return fmt.Errorf("seed tenant %s: %w", t.Email, err)
		}
	}

	for _, n := range data.Notifications {
		if _, err := db.Exec(ctx, `
            INSERT INTO notifications (user_id, message, type)
            SELECT u.id, $2, $3 FROM users u
            WHERE u.email = $1
              AND NOT EXISTS (SELECT 1 FROM notifications x WHERE x.user_id = u.id AND x.message = $2)
        `, n.Email, n.Message, n.Type); err != nil {
			return fmt.Errorf("seed notification for %s: %w", n.Email, err)
		}
	}

	return nil
}
