package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "No file part"})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if !strings.HasSuffix(header.Filename, ".png") {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid file type"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "/uploads/id/" + header.Filename + "?n=" + string(data)})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/")

	url, err := c.Upload(context.Background(), "cat.png", strings.NewReader("meow"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/id/cat.png?n=meow", url)

	_, err = c.Upload(context.Background(), "notes.txt", strings.NewReader("x"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid file type", apiErr.Message)
}

func TestHTTPClient_GetHelpers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/nickname":
			_, _ = w.Write([]byte(`{"nickname":"brave-panda-7"}`))
		case "/api/v1/roster":
			_, _ = w.Write([]byte(`{"nicknames":["alice","bob"],"count":2}`))
		case "/api/v1/stats":
			_, _ = w.Write([]byte(`{"messages":3}`))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	nick, err := c.RandomNickname(ctx)
	require.NoError(t, err)
	assert.Equal(t, "brave-panda-7", nick)

	roster, err := c.Roster(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, roster.Nicknames)
	assert.Equal(t, 2, roster.Count)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(3), stats["messages"])
}

func TestHTTPClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).RandomNickname(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Service Unavailable", apiErr.Message)
}
