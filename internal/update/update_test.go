package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func releaseServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		current string
		want    string
		wantErr bool
	}{
		{"newer", 200, `{"tag_name":"v1.2.0"}`, "1.1.0", "1.2.0", false},
		{"same with prefix", 200, `{"tag_name":"v1.2.0"}`, "v1.2.0", "", false},
		{"no tag", 200, `{}`, "1.0.0", "", false},
		{"not found", 404, ``, "1.0.0", "", true},
		{"bad json", 200, `{`, "1.0.0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := releaseServer(t, tt.status, tt.body)
			got, err := Check(context.Background(), url, tt.current)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("got %+v, want no update", got)
			case tt.want != "" && (got == nil || got.LatestVersion != tt.want):
				t.Errorf("got %+v, want %s", got, tt.want)
			}
		})
	}
}
