package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"saathi_server/controllers"
	"saathi_server/routes"
	"saathi_server/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize the shared DynamoDB service
	log.Println("Initializing DynamoDB client...")
	dynamoService := &services.DynamoService{Client: services.DynamoDBClient()}
	log.Println("DynamoDB client initialized.")

	// Initialize services
	profileService := &services.ProfileService{Dynamo: dynamoService}
	notificationService := &services.NotificationService{Dynamo: dynamoService, Profiles: profileService}
	interestService := &services.InterestService{
		Dynamo:        dynamoService,
		Profiles:      profileService,
		Notifications: notificationService,
	}
	chatService := &services.ChatService{Dynamo: dynamoService, Profiles: profileService}
	shortlistService := &services.ShortlistService{Dynamo: dynamoService, Profiles: profileService}
	matchService := &services.MatchService{Dynamo: dynamoService, Profiles: profileService}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize the router
	r := mux.NewRouter()

	// Register a health check endpoint
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")

	// Register routes
	routes.RegisterInterestRoutes(r, interestService)
	routes.RegisterNotificationRoutes(r, notificationService)
	routes.RegisterChatRoutes(r, chatService)
	routes.RegisterShortlistRoutes(r, shortlistService)
	routes.RegisterMatchRoutes(r, matchService)

	// Add CORS middleware
	allowedOrigins := []string{"*"}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-Id"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
