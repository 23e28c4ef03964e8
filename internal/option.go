package internal

import "io"

// Option configures the promptbox application before Run starts it.
type Option func(*application)

type application struct {
	config    *Config
	logWriter io.Writer
}

// WithConfig sets the application configuration. Run fails without it.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogWriter redirects structured log output, stdout by default.
func WithLogWriter(w io.Writer) Option {
	return func(a *application) {
		a.logWriter = w
	}
}
