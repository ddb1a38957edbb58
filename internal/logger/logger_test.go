package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New(false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New(true).GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)
	log.Info().Str("file", "a.jsonl").Msg("imported")

	assert.Contains(t, buf.String(), `"message":"imported"`)
	assert.Contains(t, buf.String(), `"file":"a.jsonl"`)
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}
