package httpapi

import (
	"reflect"
	"testing"
	"time"
)

func TestConfigValidateAppliesDefaults(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Fatalf("expected default listen addr, received %s", cfg.ListenAddr)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("expected default timeout, received %s", cfg.RequestTimeout)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != defaultAllowedOrigin {
		t.Fatalf("expected default origin, received %v", cfg.AllowedOrigins)
	}
	if cfg.SessionIssuer != defaultSessionIssuer || cfg.SessionCookieName != defaultSessionCookie {
		t.Fatalf("expected session defaults, received %s / %s", cfg.SessionIssuer, cfg.SessionCookieName)
	}
}

func TestParseAllowedOrigins(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "  ", want: []string{}},
		{name: "single", raw: "http://localhost:8000", want: []string{"http://localhost:8000"}},
		{name: "trims and skips blanks", raw: " a.example , , b.example ", want: []string{"a.example", "b.example"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			got := ParseAllowedOrigins(testCase.raw)
			if !reflect.DeepEqual(got, testCase.want) {
				t.Fatalf("expected %v, received %v", testCase.want, got)
			}
		})
	}
}
