package upload

import (
	"context"
	"io"
	"log"

	storageutil "github.com/indieinfra/gallery/storage/util"
)

// NoopUploader discards uploaded bytes and returns a placeholder URL.
type NoopUploader struct{}

func (NoopUploader) Put(ctx context.Context, p *Payload) (string, error) {
	n, err := io.Copy(io.Discard, p.Body)
	if err != nil {
		return "", err
	}

	log.Printf("noop upload: filename=%q content-type=%q size=%d read=%d", p.Filename, p.ContentType, p.Size, n)

	name, ext := storageutil.ObjectName(p.Filename, p.ContentType)
	return "https://noop.example.org/" + name + ext, nil
}
