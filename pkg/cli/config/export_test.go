package config

import (
	"time"
)

func NewSlackForTest(clientID, clientSecret, signingSecret string, apiTimeout time.Duration) *Slack {
	return &Slack{
		clientID:      clientID,
		clientSecret:  clientSecret,
		signingSecret: signingSecret,
		apiTimeout:    apiTimeout,
	}
}

func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID:    projectID,
		location:     location,
		titleTimeout: time.Second,
	}
}

func NewRepositoryForTest(backend, projectID, databaseURL string) *Repository {
	return &Repository{
		backend:     backend,
		projectID:   projectID,
		databaseURL: databaseURL,
	}
}

func NewAuthForTest(jwtSecret, noAuthUID string) *Auth {
	return &Auth{
		jwtSecret: jwtSecret,
		noAuthUID: noAuthUID,
	}
}

func NewEmojiForTest(today, tomorrow, later string) *Emoji {
	return &Emoji{
		today:    today,
		tomorrow: tomorrow,
		later:    later,
	}
}

func NewNATSForTest(url string) *NATS {
	return &NATS{url: url}
}
