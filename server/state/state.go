package state

import (
	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/server/flash"
	"github.com/indieinfra/gallery/server/view"
	"github.com/indieinfra/gallery/storage/media"
	"github.com/indieinfra/gallery/storage/upload"
)

// GalleryState is the dependency set shared by every handler.
type GalleryState struct {
	Cfg        *config.Config
	MediaStore media.Store
	Gateway    *upload.Gateway
	Views      *view.Renderer
	Flash      *flash.Codec
}
