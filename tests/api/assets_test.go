package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/tbraam/gamehub-server/internal/routes"
	"github.com/tbraam/gamehub-server/tests/helpers"
)

func TestListAssets(t *testing.T) {
	testApp := helpers.GetTestApp()

	testApp.UploadAsset("doge.png", []byte("png-bytes"))
	testApp.UploadAsset("cat.JPG", []byte("jpg-bytes"))
	testApp.UploadAsset("readme.txt", []byte("not an image"))

	req := httptest.NewRequest(http.MethodGet, "/assets", nil)
	rr := httptest.NewRecorder()
	testApp.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body)
	}

	var response routes.AssetsResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}

	if !slices.Contains(response.Images, "doge.png") {
		t.Errorf("images = %v, missing doge.png", response.Images)
	}
	if !slices.Contains(response.Images, "cat.JPG") {
		t.Errorf("images = %v, missing cat.JPG despite its upper-case extension", response.Images)
	}
	if slices.Contains(response.Images, "readme.txt") {
		t.Errorf("images = %v, should not list readme.txt", response.Images)
	}
}
