package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/acme/storefront/internal/auth"
	internalcli "github.com/acme/storefront/internal/cli"
	"github.com/acme/storefront/internal/config"
	"github.com/acme/storefront/internal/database"
	"github.com/acme/storefront/internal/handlers"
	"github.com/acme/storefront/internal/identity"
	"github.com/acme/storefront/internal/repository"
	"github.com/acme/storefront/internal/services"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "0.1.0"

// connectDatabase connects to Postgres and applies the schema
func connectDatabase() error {
	if err := database.Connect(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database successfully")

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// newSessionStore picks Redis when configured and process memory otherwise
func newSessionStore(cfg *config.RedisConfig) (auth.SessionStore, func(), error) {
	if !cfg.Enabled() {
		log.Println("Redis not configured, keeping sessions in memory")
		return auth.NewMemorySessionStore(cfg.SessionTTL), func() {}, nil
	}

	store, err := auth.NewRedisSessionStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Storing sessions in Redis (tls: %v)", cfg.TLS || strings.HasPrefix(cfg.URL, "rediss://"))
	return store, func() { store.Close() }, nil
}

// buildServerDependencies creates all dependencies needed for the storefront
func buildServerDependencies(ctx context.Context, sessions auth.SessionStore, redisConfig *config.RedisConfig) (internalcli.ServerDependencies, error) {
	var deps internalcli.ServerDependencies

	deps.ServerConfig = config.LoadServerConfig()
	deps.Sessions = sessions

	oidcConfig, err := config.LoadOIDCConfig(os.Getenv, deps.ServerConfig.BaseURL)
	if err != nil {
		return deps, fmt.Errorf("missing required OIDC configuration: %w", err)
	}

	discoveryCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	oidcClient, err := auth.NewOIDCClient(discoveryCtx, oidcConfig)
	if err != nil {
		return deps, err
	}

	catalogService := services.NewCatalogService(repository.NewProductRepository())

	catalogHandler, err := handlers.NewCatalogHandler(deps.ServerConfig.TemplatesDir, catalogService)
	if err != nil {
		return deps, fmt.Errorf("failed to create catalog handler: %w", err)
	}
	deps.CatalogHandler = catalogHandler

	productHandler, err := handlers.NewProductHandler(deps.ServerConfig.TemplatesDir, catalogService)
	if err != nil {
		return deps, fmt.Errorf("failed to create product handler: %w", err)
	}
	deps.ProductHandler = productHandler

	secure := strings.HasPrefix(deps.ServerConfig.BaseURL, "https://")
	authHandler := handlers.NewAuthHandler(oidcClient, sessions, redisConfig.SessionTTL, secure)
	deps.LoginHandler = http.HandlerFunc(authHandler.Login)
	deps.CallbackHandler = http.HandlerFunc(authHandler.Callback)
	deps.LogoutHandler = http.HandlerFunc(authHandler.Logout)

	return deps, nil
}

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the storefront web server",
		Action: func(c *cli.Context) error {
			if err := connectDatabase(); err != nil {
				return err
			}
			defer database.Close()

			redisConfig, err := config.LoadRedisConfig(os.Getenv)
			if err != nil {
				return err
			}
			sessions, closeSessions, err := newSessionStore(redisConfig)
			if err != nil {
				return err
			}
			defer closeSessions()

			deps, err := buildServerDependencies(c.Context, sessions, redisConfig)
			if err != nil {
				return err
			}

			return internalcli.RunServe(deps)
		},
	}
}

// IdentityCommand returns the identity command
func IdentityCommand() *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "Start the identity provider the storefront logs in against",
		Action: func(c *cli.Context) error {
			identityConfig, err := config.LoadIdentityConfig(os.Getenv)
			if err != nil {
				return fmt.Errorf("missing required identity configuration: %w", err)
			}

			if err := connectDatabase(); err != nil {
				return err
			}
			defer database.Close()

			key, err := identity.LoadSigningKey(identityConfig.SigningKey)
			if err != nil {
				return err
			}
			if identityConfig.SigningKey == "" {
				log.Println("IDENTITY_SIGNING_KEY not set, using an ephemeral signing key")
			}

			userService := services.NewUserService(repository.NewUserRepository())
			srv, err := identity.NewServer(identityConfig, userService, key)
			if err != nil {
				return err
			}

			log.Printf("Identity provider issuer: %s", identityConfig.Issuer)
			return internalcli.RunIdentity(identityConfig, srv)
		},
	}
}

// CatalogCommand returns the catalog command
func CatalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the product catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import products from an Excel workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "path to the .xlsx workbook",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					products, err := services.ParseCatalogFile(c.String("file"))
					if err != nil {
						return err
					}

					if err := connectDatabase(); err != nil {
						return err
					}
					defer database.Close()

					catalogService := services.NewCatalogService(repository.NewProductRepository())
					result, err := catalogService.ImportProducts(c.Context, products)
					if err != nil {
						return err
					}

					fmt.Fprintf(c.App.Writer, "Imported %d products, skipped %d\n", result.Imported, result.Skipped)
					return nil
				},
			},
		},
	}
}

// UsersCommand returns the users command
func UsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage identity provider users",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a user who can sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"ACMESHOP_USER_PASSWORD"}},
					&cli.StringFlag{Name: "name", Usage: "display name, defaults to the username"},
				},
				Action: func(c *cli.Context) error {
					if err := connectDatabase(); err != nil {
						return err
					}
					defer database.Close()

					userService := services.NewUserService(repository.NewUserRepository())
					user, err := userService.Register(c.Context, c.String("username"), c.String("password"), c.String("name"))
					if err != nil {
						return err
					}

					fmt.Fprintf(c.App.Writer, "Created user %s (%s)\n", user.Username, user.ID)
					return nil
				},
			},
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "acmeshop",
		Usage:   "ACME Fitness storefront and identity provider",
		Version: version,
		Commands: []*cli.Command{
			ServeCommand(),
			IdentityCommand(),
			CatalogCommand(),
			UsersCommand(),
		},
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
