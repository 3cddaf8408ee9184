package registry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/op/go-logging"
	"github.com/shini4i/helm-deploy/internal/models"
)

const ociScheme = "oci://"

var ecrHostPattern = regexp.MustCompile(`^\d{12}\.dkr\.ecr(-fips)?\.([a-z0-9-]+)\.amazonaws\.com(\.cn)?$`)

// ErrNotECR is returned when ECR login is requested for a chart outside ECR.
var ErrNotECR = errors.New("chart is not an oci:// reference to an Amazon ECR registry")

// ECRAPI is the part of the ECR client used for registry login.
type ECRAPI interface {
	GetAuthorizationToken(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
}

// ClientFactory builds an ECR client for region.
type ClientFactory func(ctx context.Context, region string) (ECRAPI, error)

// NewECRClient builds an ECR client from the default AWS credential chain.
func NewECRClient(ctx context.Context, region string) (ECRAPI, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return ecr.NewFromConfig(cfg), nil
}

// ParseECRHost extracts the registry host and region from an oci:// chart reference.
func ParseECRHost(chart string) (host string, region string, ok bool) {
	if !strings.HasPrefix(chart, ociScheme) {
		return "", "", false
	}

	host, _, _ = strings.Cut(strings.TrimPrefix(chart, ociScheme), "/")
	matches := ecrHostPattern.FindStringSubmatch(host)
	if matches == nil {
		return "", "", false
	}

	return host, matches[2], true
}

// ECRAuthenticator plans a helm registry login against Amazon ECR.
type ECRAuthenticator struct {
	NewClient  ClientFactory
	HelmBinary string
	Log        *logging.Logger
}

// LoginStep fetches an ECR authorization token and returns the step that hands it to helm on stdin.
func (a ECRAuthenticator) LoginStep(ctx context.Context, chart string) (*models.Step, error) {
	host, region, ok := ParseECRHost(chart)
	if !ok {
		return nil, &models.ValidationError{Input: "ecr-login", Reason: ErrNotECR.Error()}
	}

	newClient := a.NewClient
	if newClient == nil {
		newClient = NewECRClient
	}

	target := "registry " + host

	client, err := newClient(ctx, region)
	if err != nil {
		return nil, &models.RegistrationError{Target: target, Err: err}
	}

	if a.Log != nil {
		a.Log.Debugf("Requesting ECR authorization token for %s in %s", host, region)
	}

	output, err := client.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return nil, &models.RegistrationError{Target: target, Err: fmt.Errorf("get ECR authorization token: %w", err)}
	}
	if len(output.AuthorizationData) == 0 {
		return nil, &models.RegistrationError{Target: target, Err: errors.New("ECR returned no authorization data")}
	}

	username, password, err := decodeToken(aws.ToString(output.AuthorizationData[0].AuthorizationToken))
	if err != nil {
		return nil, &models.RegistrationError{Target: target, Err: err}
	}

	helm := a.HelmBinary
	if helm == "" {
		helm = "helm"
	}

	return &models.Step{
		Kind:    models.StepRegistryLogin,
		Target:  target,
		Command: helm,
		Args:    []string{"registry", "login", host, "--username", username, "--password-stdin"},
		Stdin:   password,
	}, nil
}

// decodeToken splits a base64 "user:password" ECR token.
func decodeToken(token string) (string, string, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("decode ECR authorization token: %w", err)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found || username == "" || password == "" {
		return "", "", errors.New("malformed ECR authorization token")
	}

	return username, password, nil
}
