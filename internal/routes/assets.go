package routes

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tbraam/gamehub-server/internal/configuration"
	"github.com/tbraam/gamehub-server/pkg/httperrors"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

type AssetsResponse struct {
	Images []string `json:"images"`
}

// listAssets returns the image names available to the game clients, read
// from the blob container that backs the static content.
func (env *Env) listAssets(settings configuration.AzureSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := zerolog.Ctx(ctx)

		images := []string{}
		pager := env.Blob.NewListBlobsFlatPager(settings.AssetsContainer, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				httperrors.InternalServerError(w)
				log.Error().Err(err).Msg("error listing asset blobs")
				return
			}
			for _, blob := range page.Segment.BlobItems {
				if blob.Name == nil {
					continue
				}
				if imageExtensions[strings.ToLower(path.Ext(*blob.Name))] {
					images = append(images, *blob.Name)
				}
			}
		}

		response, err := json.Marshal(AssetsResponse{Images: images})
		if err != nil {
			httperrors.InternalServerError(w)
			log.Error().Err(err).Msg("error marshalling response")
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write(response)
	}
}
