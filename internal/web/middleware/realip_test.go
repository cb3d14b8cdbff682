package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no trusted proxies ignores headers",
			remoteAddr: "203.0.113.7:5000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.1"},
			want:       "203.0.113.7:5000",
		},
		{
			name:       "untrusted source ignores headers",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.7:5000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.1"},
			want:       "203.0.113.7:5000",
		},
		{
			name:       "trusted proxy x-real-ip",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.1"},
			want:       "198.51.100.1",
		},
		{
			name:       "trusted proxy first forwarded-for",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.2, 10.1.2.3"},
			want:       "198.51.100.2",
		},
		{
			name:       "bare address entry",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:5000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.3"},
			want:       "198.51.100.3",
		},
		{
			name:       "invalid header kept out",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.2.3:5000",
		},
		{
			name:       "invalid entry skipped",
			trusted:    []string{"bogus", "10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			want:       "198.51.100.4",
		},
		{
			name:       "ipv6 proxy",
			trusted:    []string{"::1"},
			remoteAddr: "[::1]:5000",
			headers:    map[string]string{"X-Real-IP": "2001:db8::1"},
			want:       "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}
