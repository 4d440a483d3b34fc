package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/salesdesk/api-commissions/internal/analytics"
	"github.com/salesdesk/api-commissions/internal/auth"
	"github.com/salesdesk/api-commissions/internal/comment"
	"github.com/salesdesk/api-commissions/internal/invite"
	"github.com/salesdesk/api-commissions/internal/notification"
	"github.com/salesdesk/api-commissions/internal/storage"
	"github.com/salesdesk/api-commissions/internal/submission"
	"github.com/salesdesk/api-commissions/internal/user"
	"github.com/salesdesk/api-commissions/internal/utils/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on the environment")
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatal("database connection: ", err)
	}

	if err := database.AutoMigrate(
		&user.User{},
		&submission.Submission{},
		&invite.Invite{},
		&comment.Comment{},
		&auth.RefreshToken{},
	); err != nil {
		log.Fatal("automigrate: ", err)
	}

	notifier := notification.NewNotifier()
	blobStore := storage.NewStoreFromEnv(context.Background())

	userHandler := user.NewHandler(database)
	submissionHandler := submission.NewHandler(database, notifier)
	inviteHandler := invite.NewHandler(database, notifier)
	commentHandler := comment.NewHandler(database)
	analyticsHandler := analytics.NewHandler(database)
	storageHandler := &storage.Handler{Store: blobStore}

	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/auth/login", userHandler.Login).Methods("POST")
	r.HandleFunc("/auth/refresh", auth.RefreshHTTPHandler(database)).Methods("POST")
	r.HandleFunc("/auth/logout", auth.LogoutHTTPHandler(database)).Methods("POST")
	r.HandleFunc("/invites/accept", inviteHandler.Accept).Methods("POST")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}).Methods("GET")

	// Authenticated routes
	api := r.NewRoute().Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/me", userHandler.Me).Methods("GET")

	api.HandleFunc("/submissions", submissionHandler.Create).Methods("POST")
	api.HandleFunc("/submissions", submissionHandler.List).Methods("GET")
	api.HandleFunc("/submissions/{id}", submissionHandler.Get).Methods("GET")
	api.HandleFunc("/submissions/{id}", submissionHandler.Update).Methods("PUT")
	api.HandleFunc("/submissions/{id}", submissionHandler.Delete).Methods("DELETE")

	api.HandleFunc("/submissions/{id}/comments", commentHandler.Create).Methods("POST")
	api.HandleFunc("/submissions/{id}/comments", commentHandler.List).Methods("GET")
	api.HandleFunc("/comments/{id}", commentHandler.Delete).Methods("DELETE")

	api.HandleFunc("/analytics/summary", analyticsHandler.GetSummary).Methods("GET")
	api.HandleFunc("/analytics/monthly", analyticsHandler.GetMonthly).Methods("GET")

	api.HandleFunc("/uploads", storageHandler.Upload).Methods("POST")
	api.HandleFunc("/uploads/{kind}/{name}", storageHandler.Download).Methods("GET")

	// Manager-only routes
	admin := api.NewRoute().Subrouter()
	admin.Use(auth.RequireManager)

	admin.HandleFunc("/users", userHandler.List).Methods("GET")
	admin.HandleFunc("/users/{id}", userHandler.Get).Methods("GET")
	admin.HandleFunc("/users/{id}/commission-rate", userHandler.UpdateCommissionRate).Methods("PATCH")
	admin.HandleFunc("/users/{id}/active", userHandler.UpdateActive).Methods("PATCH")

	admin.HandleFunc("/submissions/{id}/review", submissionHandler.StartReview).Methods("PATCH")
	admin.HandleFunc("/submissions/{id}/flag", submissionHandler.Flag).Methods("PATCH")
	admin.HandleFunc("/submissions/{id}/approve", submissionHandler.Approve).Methods("PATCH")
	admin.HandleFunc("/submissions/{id}/reject", submissionHandler.Reject).Methods("PATCH")
	admin.HandleFunc("/submissions/{id}/pay", submissionHandler.MarkPaid).Methods("PATCH")

	admin.HandleFunc("/analytics/salespeople", analyticsHandler.GetSalespeople).Methods("GET")

	admin.HandleFunc("/invites", inviteHandler.Create).Methods("POST")
	admin.HandleFunc("/invites", inviteHandler.List).Methods("GET")
	admin.HandleFunc("/invites/{id}/resend", inviteHandler.Resend).Methods("POST")
	admin.HandleFunc("/invites/{id}", inviteHandler.Cancel).Methods("DELETE")

	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "*"
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Println("listening on http://localhost:" + port)
	log.Fatal(http.ListenAndServe(":"+port, c.Handler(r)))
}
