package llm

import (
	"strings"
	"time"
)

type Config struct {
	ClassifierModel     string        `envconfig:"CLASSIFIER_MODEL" split_words:"true" default:"gpt-4o-mini"`
	ResponderModel      string        `envconfig:"RESPONDER_MODEL" split_words:"true" default:"gpt-4o-mini"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
	EmbeddingDimensions int           `envconfig:"EMBEDDING_DIMENSIONS" split_words:"true" default:"1536"`
	Temperature         float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.ClassifierModel) == "" {
		c.ClassifierModel = "gpt-4o-mini"
	}
	if strings.TrimSpace(c.ResponderModel) == "" {
		c.ResponderModel = c.ClassifierModel
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.EmbeddingDimensions <= 0 {
		c.EmbeddingDimensions = 1536
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}
