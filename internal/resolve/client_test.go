package resolve_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mhadifilms/reverie/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)

		switch r.URL.Path {
		case "/v1/streams/src-1":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"audio_url":"https://cdn.test/src-1.mp3","duration_seconds":214,"ext":"mp3"}`))
		case "/v1/streams/src-noext":
			w.Write([]byte(`{"audio_url":"https://cdn.test/src-noext","duration_seconds":90}`))
		case "/v1/streams/src-empty":
			w.Write([]byte(`{"duration_seconds":10}`))
		case "/v1/streams/src-garbled":
			w.Write([]byte(`{not json`))
		case "/v1/streams/src-flaky":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := resolve.NewClient(server.URL, time.Second)

	tests := []struct {
		name       string
		sourceID   string
		want       *resolve.Source
		wantReason string
	}{
		{
			name:     "resolves a known source",
			sourceID: "src-1",
			want:     &resolve.Source{AudioURL: "https://cdn.test/src-1.mp3", DurationSeconds: 214, Ext: "mp3"},
		},
		{
			name:     "defaults the extension to mp3",
			sourceID: "src-noext",
			want:     &resolve.Source{AudioURL: "https://cdn.test/src-noext", DurationSeconds: 90, Ext: "mp3"},
		},
		{
			name:       "unknown source",
			sourceID:   "src-missing",
			wantReason: "unknown source identifier",
		},
		{
			name:       "response without an audio URL",
			sourceID:   "src-empty",
			wantReason: "resolver response missing audio URL",
		},
		{
			name:       "malformed response body",
			sourceID:   "src-garbled",
			wantReason: "malformed resolver response",
		},
		{
			name:       "upstream failure",
			sourceID:   "src-flaky",
			wantReason: "resolver returned status 502",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src, err := client.Resolve(context.Background(), tc.sourceID)

			if tc.wantReason != "" {
				var resErr *resolve.ResolutionError
				require.ErrorAs(t, err, &resErr)
				assert.Equal(t, tc.sourceID, resErr.SourceID)
				assert.Equal(t, tc.wantReason, resErr.Reason)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, src)
		})
	}
}

func TestResolveEscapesSourceID(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"audio_url":"https://cdn.test/a.mp3"}`))
	}))
	defer server.Close()

	client := resolve.NewClient(server.URL, time.Second)

	_, err := client.Resolve(context.Background(), "weird/id")
	require.NoError(t, err)
	assert.Equal(t, "/v1/streams/weird%2Fid", gotPath)
}

func TestResolveUnreachableResolver(t *testing.T) {
	client := resolve.NewClient("http://127.0.0.1:1", 100*time.Millisecond)

	_, err := client.Resolve(context.Background(), "src-1")

	var resErr *resolve.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "resolver unreachable", resErr.Reason)
}
