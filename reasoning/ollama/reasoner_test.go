package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriguide/reasoning"
)

// mockHTTPClient implements the HTTPClient interface for testing
type mockHTTPClient struct {
	status  int
	body    string
	err     error
	request *http.Request
	sent    []byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.request = req
	if req.Body != nil {
		m.sent, _ = io.ReadAll(req.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.status,
		Status:     http.StatusText(m.status),
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "valid", opts: Options{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.1"}},
		{name: "missing endpoint", opts: Options{ModelID: "llama3.1"}, wantErr: true},
		{name: "missing model", opts: Options{BaseEndpoint: "http://localhost:11434"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:11434/api/chat", r.endpoint)
		})
	}
}

func TestInvoke(t *testing.T) {
	tests := []struct {
		name       string
		client     *mockHTTPClient
		schema     *jsonschema.Schema
		wantText   string
		wantFormat string
		wantErr    bool
	}{
		{
			name:       "structured request",
			client:     &mockHTTPClient{status: http.StatusOK, body: `{"model":"llama3.1","message":{"role":"assistant","content":"{\"ok\":true}"},"eval_count":7}`},
			schema:     &jsonschema.Schema{Type: "object"},
			wantText:   `{"ok":true}`,
			wantFormat: "json",
		},
		{
			name:     "plain request",
			client:   &mockHTTPClient{status: http.StatusOK, body: `{"message":{"role":"assistant","content":"hello"}}`},
			wantText: "hello",
		},
		{
			name:    "server error",
			client:  &mockHTTPClient{status: http.StatusInternalServerError, body: "model not loaded"},
			wantErr: true,
		},
		{
			name:    "transport error",
			client:  &mockHTTPClient{err: errors.New("connection refused")},
			wantErr: true,
		},
		{
			name:    "bad body",
			client:  &mockHTTPClient{status: http.StatusOK, body: "not json"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(Options{BaseEndpoint: "http://ollama", ModelID: "llama3.1", HTTPClient: tt.client})
			require.NoError(t, err)

			res, err := r.Invoke(context.Background(), reasoning.Prompt{Agent: "goal", System: "sys", Input: "hi", Schema: tt.schema})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, res.Text)

			var sent wireRequest
			require.NoError(t, json.Unmarshal(tt.client.sent, &sent))
			assert.Equal(t, tt.wantFormat, sent.Format)
			assert.False(t, sent.Stream)
			require.Len(t, sent.Messages, 2)
			assert.Equal(t, "system", sent.Messages[0].Role)
			assert.Equal(t, "http://ollama/api/chat", tt.client.request.URL.String())
		})
	}
}
