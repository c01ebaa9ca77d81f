package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/recommend"
	"github.com/forkcast/forkcast/pkg/anthropic"
	"github.com/forkcast/forkcast/pkg/places"
)

// initService sets up the API clients and builds the recommendation
// Service from the loaded config.
func initService() (*recommend.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	placesClient := places.NewClient(cfg.Places.APIKey, places.WithBaseURL(cfg.Places.BaseURL))

	callTimeout := time.Duration(cfg.Recommend.CallTimeoutSecs) * time.Second
	enricher := recommend.NewEnricher(
		placesClient,
		cfg.Recommend.EnrichConcurrency,
		cfg.Recommend.DetailsRatePerSec,
		callTimeout,
	)

	var reranker *recommend.Reranker
	if cfg.Anthropic.Key != "" {
		llm := anthropic.NewClient(cfg.Anthropic.Key)
		reranker = recommend.NewReranker(llm, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, callTimeout)
	} else {
		zap.L().Warn("anthropic key not configured, AI rerank disabled")
	}

	svc := recommend.NewService(placesClient, enricher, reranker, recommend.Options{
		TopK:       cfg.Recommend.TopK,
		FinalCount: cfg.Recommend.FinalCount,
		RerankMax:  cfg.Recommend.RerankMax,
	})
	return svc, nil
}
