package enrichment

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded for takes the first hop",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2", "X-Real-IP": "10.0.0.9"},
			remoteAddr: "10.0.0.1:5000",
			want:       "203.0.113.7",
		},
		{
			name:       "real ip",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			remoteAddr: "10.0.0.1:5000",
			want:       "198.51.100.4",
		},
		{
			name:       "remote addr",
			remoteAddr: "192.0.2.10:41234",
			want:       "192.0.2.10",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.11",
			want:       "192.0.2.11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/r/abc", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestUserAgent(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, Unknown, UserAgent(r))

	r.Header.Set("User-Agent", "curl/8.4.0")
	assert.Equal(t, "curl/8.4.0", UserAgent(r))
}
