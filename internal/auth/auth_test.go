package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/danmuck/evlctl/internal/testutil/testlog"
)

func TestStaticTokenValidate(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name    string
		stored  string
		input   string
		wantErr error
	}{
		{name: "empty token denied", stored: "", input: "abc", wantErr: ErrUnauthorized},
		{name: "mismatched token denied", stored: "abc", input: "xyz", wantErr: ErrUnauthorized},
		{name: "matching token accepted", stored: "abc", input: "abc", wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := (StaticToken{Token: tc.stored}).Validate(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range cases {
		got, ok := BearerToken(header)
		if got != want || ok != (want != "") {
			t.Fatalf("BearerToken(%q) got=(%q,%v) want %q", header, got, ok, want)
		}
	}
}

func TestRequire(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Require(StaticToken{Token: "secret"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for header, want := range map[string]int{
		"":              http.StatusUnauthorized,
		"Bearer wrong":  http.StatusUnauthorized,
		"Bearer secret": http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("header=%q status=%d want %d", header, rr.Code, want)
		}
	}
}
