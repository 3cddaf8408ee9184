package main

import (
	"context"
	"errors"
	"testing"

	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/app"
	"github.com/shini4i/helm-deploy/internal/inputs"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingInit(t *testing.T) {
	loggingInit(logging.DEBUG)

	if logging.GetLevel("") != logging.DEBUG {
		t.Errorf("logging level not set to DEBUG")
	}
}

func TestInitLogging(t *testing.T) {
	initLogging(false)
	assert.Equal(t, logging.INFO, logging.GetLevel(""))

	initLogging(true)
	assert.Equal(t, logging.DEBUG, logging.GetLevel(""))
}

func TestRunAppRejectsInvalidInputs(t *testing.T) {
	cfg, err := app.NewConfig(inputs.Raw{inputs.Namespace: "apps"})
	require.NoError(t, err)

	err = runApp(context.Background(), cfg)

	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, inputs.Release, validationErr.Input)
	assert.Equal(t, 1, models.ExitCode(err))
}
