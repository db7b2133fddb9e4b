// Command admin bootstraps the first Admin account directly against
// the database. Admin creation over HTTP requires an Admin token, so
// the very first one has to come from here.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-notes-api/internal/core/auth"
	"go-notes-api/internal/core/config"
	"go-notes-api/internal/core/database"
	"go-notes-api/internal/core/logger"
	"go-notes-api/internal/domain"
	"go-notes-api/internal/repo"
	"go-notes-api/internal/service"
)

func main() {
	var name, email, password string

	root := &cobra.Command{
		Use:   "admin",
		Short: "Create an Admin account in the notes database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), name, email, password)
		},
	}
	root.Flags().StringVar(&name, "name", "", "display name")
	root.Flags().StringVar(&email, "email", "", "email address")
	root.Flags().StringVar(&password, "password", "", "password (min 6 chars)")
	_ = root.MarkFlagRequired("name")
	_ = root.MarkFlagRequired("email")
	_ = root.MarkFlagRequired("password")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, name, email, password string) error {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Note{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	svc := service.NewUserService(repo.NewUserRepo(db), jwter, log)

	u, err := svc.AdminCreate(ctx, service.AdminCreateInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(domain.RoleAdmin),
	})
	if err != nil {
		log.Error("admin create failed", zap.Error(err))
		return err
	}

	out, _ := json.MarshalIndent(u, "", "  ")
	fmt.Println(string(out))
	return nil
}
