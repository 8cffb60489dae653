package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mcdev12/codeduel/go/internal/history"
	"github.com/mcdev12/codeduel/go/internal/questions"
	"github.com/mcdev12/codeduel/go/internal/users"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(port string, services *Services) *http.Server {
	router := newRouter(services)

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h2c.NewHandler(c.Handler(router), &http2.Server{}),
	}
}

func newRouter(services *Services) *mux.Router {
	r := mux.NewRouter()

	setupHealthCheck(r)
	r.HandleFunc("/health/ready", handleReadiness(services)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/matchmaking/stats", handleMatchmakingStats(services)).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", handleGetMatch(services)).Methods(http.MethodGet)
	api.HandleFunc("/questions", handleListQuestions(services)).Methods(http.MethodGet)
	api.HandleFunc("/questions/{id}", handleGetQuestion(services)).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", handleGetProfile(services)).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/stats", handlePlayerStats(services)).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/matches", handlePlayerMatches(services)).Methods(http.MethodGet)

	services.Gateway.RegisterRoutes(r)
	return r
}

func setupHealthCheck(r *mux.Router) {
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("Failed to write health check response")
		}
	})
}

func handleMatchmakingStats(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, services.Coordinator.Stats())
	}
}

// handleGetMatch serves a live match snapshot, falling back to stored history.
func handleGetMatch(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if view, ok := services.Coordinator.Snapshot(id); ok {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "live",
				"match":  view,
			})
			return
		}

		result, err := services.History.GetMatch(r.Context(), id)
		if err != nil {
			if errors.Is(err, history.ErrMatchNotFound) {
				writeError(w, http.StatusNotFound, "match not found")
				return
			}
			log.Error().Err(err).Str("session_id", id).Msg("failed to load match")
			writeError(w, http.StatusInternalServerError, "failed to load match")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "finished",
			"match":  result,
		})
	}
}

func handlePlayerStats(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		stats, err := services.History.GetPlayerStats(r.Context(), id)
		if err != nil {
			log.Error().Err(err).Str("player_id", id).Msg("failed to load player stats")
			writeError(w, http.StatusInternalServerError, "failed to load player stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handlePlayerMatches(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		limit, err := queryInt(r, "limit")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		matches, err := services.History.ListPlayerMatches(r.Context(), id, limit)
		if err != nil {
			log.Error().Err(err).Str("player_id", id).Msg("failed to list player matches")
			writeError(w, http.StatusInternalServerError, "failed to list matches")
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func handleListQuestions(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		offset, err := queryInt(r, "offset")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		qs, err := services.Questions.ListQuestions(r.Context(), limit, offset)
		if err != nil {
			log.Error().Err(err).Msg("failed to list questions")
			writeError(w, http.StatusInternalServerError, "failed to list questions")
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

func handleGetQuestion(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		q, err := services.Questions.GetQuestion(r.Context(), id)
		if err != nil {
			if errors.Is(err, questions.ErrQuestionNotFound) {
				writeError(w, http.StatusNotFound, "question not found")
				return
			}
			log.Error().Err(err).Str("question_id", id).Msg("failed to load question")
			writeError(w, http.StatusInternalServerError, "failed to load question")
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func handleGetProfile(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		p, err := services.Users.GetProfile(r.Context(), id)
		if err != nil {
			if errors.Is(err, users.ErrProfileNotFound) {
				writeError(w, http.StatusNotFound, "player not found")
				return
			}
			log.Error().Err(err).Str("player_id", id).Msg("failed to load profile")
			writeError(w, http.StatusInternalServerError, "failed to load player")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// queryInt reads an optional non-negative integer query parameter; absent is 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
