// Package app wires configuration into the services shared by the bot and
// the command line tool.
package app

import (
	"context"
	"fmt"

	"github.com/raine/platescan/config"
	"github.com/raine/platescan/internal/foodapi"
	"github.com/raine/platescan/internal/llm"
	"github.com/raine/platescan/internal/mealstitch"
	"github.com/raine/platescan/internal/storage"
	"github.com/rs/zerolog/log"
)

// Services holds every backend a surface needs.
type Services struct {
	Config config.Config
	API    *foodapi.Client
	DB     *storage.SQLiteStore

	Analyzer    llm.Analyzer
	Stitch      mealstitch.Client
	History     storage.HistoryStore
	Medications storage.MedicationStore
}

// Open builds the services for c. The local database is always opened since
// it holds the analysis cache and the bot allow-list.
func Open(ctx context.Context, c config.Config) (*Services, error) {
	db, err := storage.NewSQLiteStore(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	log.Info().Str("dbPath", c.DBPath).Msg("store initialized")

	api := foodapi.NewClient(c.FoodAPI())
	s := &Services{Config: c, API: api, DB: db, Stitch: api}

	var inner llm.Transcriber
	switch c.Analyzer {
	case config.AnalyzerGemini:
		gemini, err := llm.NewGeminiAnalyzer(ctx, c.GeminiAPIKey, c.GeminiModel)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize gemini analyzer: %w", err)
		}
		inner = gemini
	default:
		inner = llm.NewRemoteAnalyzer(api)
	}
	s.Analyzer = llm.NewCachedAnalyzer(inner, db)
	log.Info().Str("analyzer", c.Analyzer).Msg("analyzer initialized")

	switch c.Store {
	case config.StoreRemote:
		s.History = api
		s.Medications = api
	default:
		s.History = db
		s.Medications = db
	}
	log.Info().Str("store", c.Store).Msg("history store selected")

	return s, nil
}

// Close releases the local database.
func (s *Services) Close() error {
	return s.DB.Close()
}
