package gitlab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestPosterPost(t *testing.T) {
	var received struct {
		Method string
		Path   string
		Body   map[string]string
		Token  string
	}

	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			received.Method = req.Method
			received.Path = req.URL.EscapedPath()
			received.Token = req.Header.Get(privateTokenHeader)

			data, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, &received.Body))

			resp := httptest.NewRecorder()
			resp.WriteHeader(http.StatusCreated)
			return resp.Result(), nil
		}),
	}

	poster, err := NewPoster(Config{
		BaseURL:         "http://gitlab.example",
		Token:           "token",
		ProjectID:       "group/project",
		MergeRequestIID: 7,
		HTTPClient:      client,
	})
	require.NoError(t, err)

	err = poster.Post(context.Background(), "deployment succeeded")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, received.Method)
	assert.Equal(t, "token", received.Token)
	assert.Equal(t, "deployment succeeded", received.Body["body"])
	assert.Equal(t, "/api/v4/projects/group%2Fproject/merge_requests/7/notes", received.Path)
}

func TestPosterPostUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"403 Forbidden"}`))
	}))
	t.Cleanup(server.Close)

	poster, err := NewPoster(Config{
		BaseURL:         server.URL,
		Token:           "token",
		ProjectID:       "42",
		MergeRequestIID: 1,
	})
	require.NoError(t, err)

	err = poster.Post(context.Background(), "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403 Forbidden")
}

func TestPosterPostRejectsEmptyBody(t *testing.T) {
	poster, err := NewPoster(Config{BaseURL: "http://gitlab.example", Token: "t", ProjectID: "1", MergeRequestIID: 1})
	require.NoError(t, err)

	assert.Error(t, poster.Post(context.Background(), "   "))
}

func TestNewPosterValidation(t *testing.T) {
	cases := map[string]Config{
		"missing base url": {Token: "t", ProjectID: "1", MergeRequestIID: 1},
		"missing token":    {BaseURL: "http://gitlab.example", ProjectID: "1", MergeRequestIID: 1},
		"missing project":  {BaseURL: "http://gitlab.example", Token: "t", MergeRequestIID: 1},
		"missing mr iid":   {BaseURL: "http://gitlab.example", Token: "t", ProjectID: "1"},
		"invalid base url": {BaseURL: "://bad", Token: "t", ProjectID: "1", MergeRequestIID: 1},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPoster(cfg)
			assert.Error(t, err)
		})
	}
}
