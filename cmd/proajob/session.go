package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/proajob/proajob/internal/client"
	"github.com/proajob/proajob/internal/config"
	"github.com/proajob/proajob/internal/observability"
)

// clientFlags are shared by the commands that drive the API through a form.
type clientFlags struct {
	configPath string
	api        string
	token      string
	email      string
	password   string
	userID     int
	logFile    string
}

func (cf *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cf.configPath, "config", "", "Path to a client config JSON file")
	cmd.Flags().StringVar(&cf.api, "api", "", "Base URL of the API (default $PROAJOB_API_URL or "+config.DefaultAPIURL+")")
	cmd.Flags().StringVar(&cf.token, "token", "", "Bearer token (default $PROAJOB_TOKEN)")
	cmd.Flags().StringVar(&cf.email, "email", "", "Log in with this e-mail when no token is set")
	cmd.Flags().StringVar(&cf.password, "password", "", "Password for --email (default $PROAJOB_PASSWORD)")
	cmd.Flags().StringVar(&cf.logFile, "log-file", "", "Append logs to this file instead of discarding them")
}

// resolve layers the flags over the config file and falls back to the
// environment for anything still unset.
func (cf *clientFlags) resolve() (config.ClientConfig, error) {
	file := &config.ClientConfig{}
	if cf.configPath != "" {
		loaded, err := config.LoadClientConfig(cf.configPath)
		if err != nil {
			return config.ClientConfig{}, err
		}
		file = loaded
	}

	flags := &config.ClientConfig{
		APIURL:  cf.api,
		Token:   cf.token,
		Email:   cf.email,
		UserID:  cf.userID,
		LogFile: cf.logFile,
	}
	cfg := flags.MergeWithDefaults(*file)
	if err := cfg.Validate(); err != nil {
		return config.ClientConfig{}, err
	}
	return cfg, nil
}

// session is an API client ready for a form.
type session struct {
	api    *client.Client
	log    logrus.FieldLogger
	userID int
	close  func()
}

func openSession(ctx context.Context, cf *clientFlags) (*session, error) {
	cfg, err := cf.resolve()
	if err != nil {
		return nil, err
	}

	log := observability.Discard()
	closeLog := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log, err = observability.NewLogger(f, getEnv("LOG_LEVEL", "info"), "json")
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		closeLog = func() { _ = f.Close() }
	}

	s := &session{
		api:    client.New(cfg.APIURL, cfg.Token, nil).WithLogger(log),
		log:    log,
		userID: cfg.UserID,
		close:  closeLog,
	}

	if cfg.Token == "" && cfg.Email != "" {
		password := cf.password
		if password == "" {
			password = os.Getenv("PROAJOB_PASSWORD")
		}
		resp, err := s.api.Login(ctx, cfg.Email, password)
		if err != nil {
			closeLog()
			return nil, fmt.Errorf("login failed: %w", err)
		}
		if resp.User != nil {
			if s.userID == 0 {
				s.userID = resp.User.ID
			}
			log.WithFields(logrus.Fields{"user_id": resp.User.ID, "role": resp.User.Role}).Info("logged in")
		}
	}
	return s, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
