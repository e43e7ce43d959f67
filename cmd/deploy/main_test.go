package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerArgs(t *testing.T) {
	assert.Equal(t, []string{
		"--port", "8501",
		"--address", "0.0.0.0",
		"--headless=true",
		"--cors=false",
		"--xsrf=false",
	}, serverArgs(""))

	args := serverArgs("9000")
	assert.Equal(t, "9000", args[1])
}
