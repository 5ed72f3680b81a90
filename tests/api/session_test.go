package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/tbraam/gamehub-server/internal/routes"
	"github.com/tbraam/gamehub-server/tests/helpers"
)

var pinPattern = regexp.MustCompile(`^\d{6}$`)

func TestCreateSession(t *testing.T) {
	testApp := helpers.GetTestApp()

	cases := []struct {
		name             string
		mode             string
		outputStatusCode int
		expectedMode     string
	}{
		{
			name:             "plane session",
			mode:             "plane",
			outputStatusCode: 201,
			expectedMode:     "plane",
		},
		{
			name:             "synonym is canonicalized",
			mode:             "meme-wars",
			outputStatusCode: 201,
			expectedMode:     "memewars",
		},
		{
			name:             "unknown mode",
			mode:             "chess",
			outputStatusCode: 400,
		},
		{
			name:             "empty mode",
			mode:             "",
			outputStatusCode: 400,
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			bodyBytes, err := json.Marshal(routes.SessionCreate{Mode: testCase.mode})
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(bodyBytes))
			rr := httptest.NewRecorder()
			testApp.Handler.ServeHTTP(rr, req)

			if rr.Code != testCase.outputStatusCode {
				t.Fatalf("status = %d, want %d; body: %s", rr.Code, testCase.outputStatusCode, rr.Body)
			}
			if testCase.outputStatusCode != http.StatusCreated {
				return
			}

			var response routes.SessionResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("invalid response body: %v", err)
			}
			if !pinPattern.MatchString(response.Pin) {
				t.Errorf("pin = %q, want six digits", response.Pin)
			}
			if response.Mode != testCase.expectedMode {
				t.Errorf("mode = %q, want %q", response.Mode, testCase.expectedMode)
			}
			if testApp.Hub.Room(response.Pin) == nil {
				t.Error("session pin has no backing room")
			}
		})
	}
}

func TestCreateSessionPinsAreUnique(t *testing.T) {
	testApp := helpers.GetTestApp()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		bodyBytes, _ := json.Marshal(routes.SessionCreate{Mode: "line"})
		req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(bodyBytes))
		rr := httptest.NewRecorder()
		testApp.Handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rr.Code)
		}
		var response routes.SessionResponse
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatal(err)
		}
		if seen[response.Pin] {
			t.Fatalf("pin %q handed out twice", response.Pin)
		}
		seen[response.Pin] = true
	}
}

func TestHealthz(t *testing.T) {
	testApp := helpers.GetTestApp()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	testApp.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
