package common

import (
	"context"

	"github.com/indieinfra/gallery/server/state"
	"github.com/indieinfra/gallery/storage/media"
	"github.com/indieinfra/gallery/storage/upload"
)

// Ingest uploads the payload and records the resulting URL. No record is
// written unless the upload succeeded; a failed write after a successful
// upload leaves the hosted file orphaned.
func Ingest(ctx context.Context, st *state.GalleryState, p *upload.Payload, mediaType string) (media.Record, error) {
	url, err := st.Gateway.Upload(ctx, p)
	if err != nil {
		return media.Record{}, err
	}

	return st.MediaStore.Create(ctx, url, mediaType)
}
