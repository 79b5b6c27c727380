package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/pizza-admin/internal/config"
	"github.com/franciscosanchezn/pizza-admin/internal/database"
	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/franciscosanchezn/pizza-admin/internal/services"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Parse command line flags
	role := flag.String("role", models.RoleAdmin, "User role (admin or user)")
	random := flag.Bool("random", false, "Generate a random client ID and secret instead of the fixed development ones")
	list := flag.Bool("list", false, "List the clients owned by the role's user and exit")
	revoke := flag.String("revoke", "", "Delete the client with this ID and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	db, err := database.InitDatabase(conf.Database())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	ctx := context.Background()
	users := services.NewUserService(db)
	clients := services.NewClientService(db)

	// Get or create user with specified role
	user, err := users.GetOrCreateUser(fmt.Sprintf("%s@pizza.com", *role), fmt.Sprintf("%s User", *role), *role)
	if err != nil {
		log.WithError(err).WithField("role", *role).Fatal("Failed to get user for role")
	}

	switch {
	case *list:
		owned, err := clients.GetClientsByUserID(ctx, user.ID)
		if err != nil {
			log.WithError(err).Fatal("Failed to list clients")
		}
		for _, c := range owned {
			fmt.Printf("%s\t%s\t%s\n", c.ID, c.Name, c.Scopes)
		}
		return
	case *revoke != "":
		if err := clients.DeleteClient(ctx, *revoke, user.ID); err != nil {
			log.WithError(err).WithField("client_id", *revoke).Fatal("Failed to revoke client")
		}
		fmt.Printf("Client %s revoked\n", *revoke)
		return
	}

	// Determine client credentials based on role
	var clientID, clientSecret string
	switch {
	case *random:
		clientID = uuid.New().String()
		clientSecret = uuid.New().String()
	case *role == models.RoleUser:
		clientID = "user-client"
		clientSecret = "user-secret-123"
	default:
		clientID = "dev-client"
		clientSecret = "dev-secret-123"
	}

	// Check if client already exists
	if _, err := clients.GetClientByID(ctx, clientID); err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", *role)
		printCredentials(clientID, clientSecret)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash secret")
	}

	client := &models.OAuthClient{
		ID:         clientID,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s Client", *role),
		Domain:     "http://localhost",
		UserID:     user.ID,
		Scopes:     "read write",
		GrantTypes: "client_credentials",
	}
	if err := clients.CreateClient(ctx, client); err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("✓ Development OAuth client created for role '%s' (user ID %d)!\n", *role, user.ID)
	printCredentials(clientID, clientSecret)
}

func printCredentials(clientID, clientSecret string) {
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Println("\nUse these credentials with toppingctl:")
	fmt.Printf("export PIZZA_CLIENT_ID=%s\n", clientID)
	fmt.Printf("export PIZZA_CLIENT_SECRET=%s\n", clientSecret)
	fmt.Println("\nor request a token directly:")
	fmt.Printf("curl -X POST http://localhost:8080/oauth/token \\\n")
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}
