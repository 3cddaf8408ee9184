package registry

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChart = "oci://123456789012.dkr.ecr.eu-central-1.amazonaws.com/charts/podinfo"

type fakeECR struct {
	output *ecr.GetAuthorizationTokenOutput
	err    error
}

func (f fakeECR) GetAuthorizationToken(context.Context, *ecr.GetAuthorizationTokenInput, ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error) {
	return f.output, f.err
}

func factoryFor(client ECRAPI, gotRegion *string) ClientFactory {
	return func(_ context.Context, region string) (ECRAPI, error) {
		if gotRegion != nil {
			*gotRegion = region
		}
		return client, nil
	}
}

func tokenOutput(raw string) *ecr.GetAuthorizationTokenOutput {
	return &ecr.GetAuthorizationTokenOutput{
		AuthorizationData: []types.AuthorizationData{
			{AuthorizationToken: aws.String(base64.StdEncoding.EncodeToString([]byte(raw)))},
		},
	}
}

func TestParseECRHost(t *testing.T) {
	cases := []struct {
		chart  string
		host   string
		region string
		ok     bool
	}{
		{chart: testChart, host: "123456789012.dkr.ecr.eu-central-1.amazonaws.com", region: "eu-central-1", ok: true},
		{chart: "oci://123456789012.dkr.ecr-fips.us-east-1.amazonaws.com/app", host: "123456789012.dkr.ecr-fips.us-east-1.amazonaws.com", region: "us-east-1", ok: true},
		{chart: "oci://123456789012.dkr.ecr.cn-north-1.amazonaws.com.cn/app", host: "123456789012.dkr.ecr.cn-north-1.amazonaws.com.cn", region: "cn-north-1", ok: true},
		{chart: "oci://ghcr.io/stefanprodan/charts/podinfo"},
		{chart: "123456789012.dkr.ecr.eu-central-1.amazonaws.com/charts/podinfo"},
		{chart: "podinfo/podinfo"},
	}

	for _, tc := range cases {
		host, region, ok := ParseECRHost(tc.chart)
		assert.Equal(t, tc.ok, ok, tc.chart)
		assert.Equal(t, tc.host, host, tc.chart)
		assert.Equal(t, tc.region, region, tc.chart)
	}
}

func TestLoginStep(t *testing.T) {
	var region string
	auth := ECRAuthenticator{
		NewClient: factoryFor(fakeECR{output: tokenOutput("AWS:s3cr3t")}, &region),
		Log:       logging.MustGetLogger("test"),
	}

	step, err := auth.LoginStep(context.Background(), testChart)
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", region)
	assert.Equal(t, models.StepRegistryLogin, step.Kind)
	assert.Equal(t, "helm", step.Command)
	assert.Equal(t, []string{
		"registry", "login", "123456789012.dkr.ecr.eu-central-1.amazonaws.com",
		"--username", "AWS", "--password-stdin",
	}, step.Args)
	assert.Equal(t, "s3cr3t", step.Stdin)
	assert.NotContains(t, step.String(), "s3cr3t")
}

func TestLoginStepRejectsNonECRChart(t *testing.T) {
	auth := ECRAuthenticator{NewClient: factoryFor(fakeECR{}, nil)}

	_, err := auth.LoginStep(context.Background(), "oci://ghcr.io/stefanprodan/charts/podinfo")

	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
}

func TestLoginStepFailures(t *testing.T) {
	cases := map[string]ECRAPI{
		"api error":         fakeECR{err: errors.New("AccessDeniedException")},
		"no data":           fakeECR{output: &ecr.GetAuthorizationTokenOutput{}},
		"malformed token":   fakeECR{output: tokenOutput("no-separator")},
		"not base64 token":  fakeECR{output: &ecr.GetAuthorizationTokenOutput{AuthorizationData: []types.AuthorizationData{{AuthorizationToken: aws.String("%%%")}}}},
		"empty credentials": fakeECR{output: tokenOutput("AWS:")},
	}

	for name, client := range cases {
		t.Run(name, func(t *testing.T) {
			auth := ECRAuthenticator{NewClient: factoryFor(client, nil)}

			step, err := auth.LoginStep(context.Background(), testChart)

			assert.Nil(t, step)
			var regErr *models.RegistrationError
			require.True(t, errors.As(err, &regErr), "expected RegistrationError, got %v", err)
			assert.Equal(t, "registry 123456789012.dkr.ecr.eu-central-1.amazonaws.com", regErr.Target)
		})
	}
}

func TestLoginStepClientFactoryFailure(t *testing.T) {
	auth := ECRAuthenticator{NewClient: func(context.Context, string) (ECRAPI, error) {
		return nil, errors.New("no credentials")
	}}

	_, err := auth.LoginStep(context.Background(), testChart)

	var regErr *models.RegistrationError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, 1, models.ExitCode(err))
}
