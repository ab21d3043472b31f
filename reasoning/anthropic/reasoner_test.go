package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriguide/reasoning"
)

func TestInvoke(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
		wantErr  string
	}{
		{
			name:     "text response",
			status:   http.StatusOK,
			body:     `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"{\"ok\":true}"}],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":7}}`,
			wantText: `{"ok":true}`,
		},
		{
			name:    "max tokens",
			status:  http.StatusOK,
			body:    `{"id":"msg_2","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"{"}],"stop_reason":"max_tokens","usage":{"input_tokens":5,"output_tokens":1024}}`,
			wantErr: "MaxTokens",
		},
		{
			name:    "empty content",
			status:  http.StatusOK,
			body:    `{"id":"msg_3","type":"message","role":"assistant","model":"claude-test","content":[],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":0}}`,
			wantErr: "no text",
		},
		{
			name:    "api error",
			status:  http.StatusInternalServerError,
			body:    `{"type":"error","error":{"type":"api_error","message":"overloaded"}}`,
			wantErr: "anthropic api error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &sent)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			r := New(Options{APIKey: "test", BaseURL: srv.URL, Model: "claude-test"})
			res, err := r.Invoke(context.Background(), reasoning.Prompt{Agent: "motivation", System: "Be kind.", Input: "Encourage me."})
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, res.Text)
			assert.Equal(t, 5, res.InputTokens)
			assert.Equal(t, "claude-test", sent["model"])
			assert.NotEmpty(t, sent["system"])
		})
	}
}

func TestNewDefaults(t *testing.T) {
	r := New(Options{})
	assert.Equal(t, string(defaultModel), r.opts.Model)
	assert.EqualValues(t, defaultMaxTokens, r.opts.MaxTokens)
	assert.Equal(t, defaultTemperature, r.opts.Temperature)
}
