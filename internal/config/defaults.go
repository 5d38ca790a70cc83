package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Store.Host == "" {
		cfg.Store.Host = "localhost"
	}
	if cfg.Store.Port == 0 {
		cfg.Store.Port = 6334
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = "handbook_chunks"
	}
	if cfg.Store.VectorSize == 0 {
		cfg.Store.VectorSize = 768
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "gemini"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "gemini-embedding-001"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.5-flash"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Rerank.MaxTokens == 0 {
		cfg.Rerank.MaxTokens = 256
	}
	if cfg.Chat.NResults == 0 {
		cfg.Chat.NResults = 15
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 3
	}
	if cfg.Chat.MaxQueryLength == 0 {
		cfg.Chat.MaxQueryLength = 500
	}
	if cfg.Crawl.MaxDepth == 0 {
		cfg.Crawl.MaxDepth = 3
	}
	if cfg.Crawl.BatchSize == 0 {
		cfg.Crawl.BatchSize = 100
	}
	if cfg.Crawl.FetchTimeoutSecs == 0 {
		cfg.Crawl.FetchTimeoutSecs = 10
	}
	if cfg.Crawl.PolitenessDelayMS == 0 {
		cfg.Crawl.PolitenessDelayMS = 500
	}
	if cfg.Feedback.DatabasePath == "" {
		cfg.Feedback.DatabasePath = "./data/feedback.db"
	}
}
