// cmd/addadmin/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jiyadkamal/bike/internal/auth"
	"github.com/jiyadkamal/bike/internal/config"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/repository"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	email    string
	password string
	name     string
)

func init() {
	rootCmd.Flags().StringVarP(&email, "email", "e", "", "Email address of the admin account")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "Password for the admin account")
	rootCmd.Flags().StringVarP(&name, "name", "n", "Admin", "Display name for the admin account")
	rootCmd.MarkFlagRequired("email")
	rootCmd.MarkFlagRequired("password")
}

// Bootstrap tool: every other admin action requires an existing admin
// session, so the first admin has to come from outside the API.
var rootCmd = &cobra.Command{
	Use:   "addadmin",
	Short: "Create or promote an approved admin account",
	Long:  `Creates an approved admin user directly in the database, or promotes an existing account if the email is already registered.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.SSLMode,
			cfg.Database.SearchPath,
		)

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		users := repository.NewUserRepository(db)
		hasher := auth.NewPasswordHasher()

		hash, err := hasher.Hash(password)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		existing, err := users.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			log.Fatalf("Failed to look up user: %v", err)
		}

		if existing != nil {
			existing.Role = model.RoleAdmin
			existing.Status = model.StatusApproved
			existing.PasswordHash = hash
			if err := users.Update(ctx, existing); err != nil {
				log.Fatalf("Failed to promote user: %v", err)
			}
			fmt.Printf("Promoted existing user %s to admin\n", email)
			return
		}

		user := &model.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			Status:       model.StatusApproved,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		fmt.Printf("Created admin %s (%s)\n", email, user.ID)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
