package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/flowprep/internal/domain/config"
)

func TestFormatError_PlainError(t *testing.T) {
	err := errors.New("something broke")
	assert.Equal(t, "something broke", formatError(err))
}

func TestFormatError_UserError(t *testing.T) {
	err := config.NewConfigNotFoundError("/tmp/flowprep.yaml")

	msg := formatError(err)
	assert.Contains(t, msg, "configuration file not found")
	assert.Contains(t, msg, "/tmp/flowprep.yaml")
	assert.Contains(t, msg, "Suggestion:")
}

func TestFormatError_VerboseShowsUnderlying(t *testing.T) {
	err := config.NewParseError("/tmp/flowprep.yaml", errors.New("yaml: line 3"))

	verbose = true
	defer func() { verbose = false }()

	msg := formatError(err)
	assert.Contains(t, msg, "Technical details")
	assert.Contains(t, msg, "yaml: line 3")
}

func TestPrintErrorTo(t *testing.T) {
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestRootCmd_SilencesCobraOutput(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
}
