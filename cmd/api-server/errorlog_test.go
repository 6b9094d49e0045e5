package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"afro-class/pkg/logging"
)

func TestServerErrorLog(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(logging.Config{Format: "json"}, &buf)
	errLog := newServerErrorLog(logger)

	errLog.Printf("http: response.Write on hijacked connection: write tcp: broken pipe")
	assert.Empty(t, buf.String())

	errLog.Printf("http: Accept error: too many open files")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "too many open files")
}
