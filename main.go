package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ai_editor_service/assist"
	"ai_editor_service/server"
	"ai_editor_service/store"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start the assistant web service")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	addUser := flag.String("add-user", "", "register a user by email and print a bearer token")
	premium := flag.Bool("premium", false, "mark the added user as premium")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	logger, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer st.Close()

	// User-admin mode: register a user, print the token, exit.
	if *addUser != "" {
		user, token, err := st.CreateUser(context.Background(), *addUser, *premium)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Info("user created",
			zap.String("id", user.ID),
			zap.String("email", user.Email),
			zap.Bool("premium", user.Premium))
		fmt.Println(token)
		return
	}

	if !*serve {
		fmt.Fprintln(os.Stderr, "nothing to do: pass --serve or --add-user")
		os.Exit(1)
	}

	llm, err := buildLLM(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	assistant, err := assist.NewAssistant(llm, assist.ModelConfig{
		Default: cfg.LLM.Model,
		Power:   cfg.LLM.PowerModel,
	}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	srv, err := server.New(assistant, st, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	listen := cfg.ServerAddr
	if *addr != "" {
		listen = *addr
	}
	if listen == "" {
		listen = ":8080"
	}
	logger.Info("starting assistant service", zap.String("addr", listen))
	if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func buildLLM(cfg server.Config) (assist.LLMClient, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key in config")
	}
	switch cfg.LLM.Provider {
	case "openai":
		return assist.NewOpenAILLMFromConfig(&assist.LLMSettings{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	case "deepseek":
		// OpenAI-compatible API; base_url must point at the provider.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return assist.NewOpenAILLMFromConfig(&assist.LLMSettings{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	case "mock":
		// Local development without a model backend.
		return &assist.MockLLM{Replies: []string{"(mock reply)"}}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
