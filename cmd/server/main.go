// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/partylabs/ideasthesia/internal/auth"
	"github.com/partylabs/ideasthesia/internal/database"
	"github.com/partylabs/ideasthesia/internal/handlers"
	"github.com/partylabs/ideasthesia/internal/kv"
	"github.com/partylabs/ideasthesia/internal/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	backend, err := kv.ConnectRedis()
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	listLimit := 0
	if v := os.Getenv("PARTY_LIST_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			listLimit = n
		}
	}

	ps := handlers.NewPartyServer(backend, listLimit)
	logMW := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/logout", handlers.LogoutHandler)

	// party endpoints
	mux.Handle("/party/new", logMW(http.HandlerFunc(handlers.CreatePartyHandler(ps))))
	mux.Handle("/party/list", logMW(http.HandlerFunc(handlers.ListPartiesHandler(ps))))
	mux.Handle("/party/join", logMW(http.HandlerFunc(handlers.JoinPartyHandler(ps))))
	mux.Handle("/party/leave", logMW(http.HandlerFunc(handlers.LeavePartyHandler(ps))))

	// live directory feed
	mux.Handle("/party/ws", logMW(http.HandlerFunc(handlers.PartyFeedHandler(logger, ps))))

	// join-link target
	mux.Handle("/games/ideasthesia/", logMW(http.HandlerFunc(handlers.GamePageHandler(ps))))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
