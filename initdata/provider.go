// Package initdata resolves the signed Telegram mini-app init data from the
// host environment through an ordered list of providers.
package initdata

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Provider yields serialized init data, or "" when it has none.
type Provider interface {
	Name() string
	InitData() (string, error)
}

// Chain tries providers in order; the first non-empty value wins.
type Chain struct {
	providers []Provider
	log       logrus.FieldLogger
}

func NewChain(log logrus.FieldLogger, providers ...Provider) *Chain {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Chain{providers: providers, log: log}
}

// Resolve returns the first non-empty trimmed value. Provider errors are
// logged and the next provider is tried.
func (c *Chain) Resolve() string {
	for _, p := range c.providers {
		value, err := p.InitData()
		if err != nil {
			c.log.WithError(err).WithField("provider", p.Name()).Warn("init data provider failed, trying next")
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

// Present reports whether any provider indicates the platform is there,
// even when it carries no init data.
func (c *Chain) Present() bool {
	for _, p := range c.providers {
		if d, ok := p.(interface{ Detected() bool }); ok && d.Detected() {
			return true
		}
	}
	return false
}
