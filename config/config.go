package config

import "time"

type Config struct {
	Web      Web
	Cors     Cors
	Upstream Upstream
	Session  Session
	Chat     Chat
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:3000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string `conf:"default:http://localhost:3001"`
}

// Upstream points at the course platform API the gateway proxies.
type Upstream struct {
	URL     string        `conf:"default:http://localhost:5000"`
	Timeout time.Duration `conf:"default:10s"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:24h"`
}

// Chat throttles the chatbot send path per client.
type Chat struct {
	Burst        int           `conf:"default:5"`
	SendInterval time.Duration `conf:"default:2s"`
	ClientExpiry time.Duration `conf:"default:1h"`
}
