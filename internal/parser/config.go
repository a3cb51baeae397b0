package parser

import (
	"ezquiz/internal/config"
	"ezquiz/internal/util"

	"go.uber.org/zap"
)

// NewFromConfig builds a parser from the parser section of the configuration.
// Empty marker fields keep their defaults.
func NewFromConfig(cfg config.ParserConfig, logger *zap.Logger) (*Parser, error) {
	m := DefaultMarkers()
	if cfg.Emphasis != "" {
		m.Emphasis = cfg.Emphasis
	}
	if cfg.TitlePrefix != "" {
		m.TitlePrefix = cfg.TitlePrefix
	}
	if cfg.QuestionKeyword != "" {
		m.QuestionKeyword = cfg.QuestionKeyword
	}
	if cfg.AnswerKeyword != "" {
		m.AnswerKeyword = cfg.AnswerKeyword
	}
	if cfg.Labels != "" {
		m.Labels = cfg.Labels
	}
	if len(cfg.FallbackExtensions) > 0 {
		m.FallbackExtensions = cfg.FallbackExtensions
	}

	newID, err := util.IDGenerator(cfg.IDGenerator)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithMarkers(m), WithIDGenerator(newID)}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return New(opts...)
}
